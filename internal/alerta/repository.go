package alerta

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso às tabelas do emociograma e seus alertas.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateRegistro insere uma entrada do emociograma.
func (r *Repository) CreateRegistro(ctx context.Context, registro Registro) (Registro, error) {
	const query = `
        INSERT INTO registros_emociograma (matricula, nome, estado, observacao)
        VALUES ($1, $2, $3, $4)
        RETURNING id, matricula, nome, estado, observacao, criado_em
    `

	row := r.pool.QueryRow(ctx, query,
		registro.Matricula,
		registro.Nome,
		NormalizeEstado(registro.Estado),
		strings.TrimSpace(registro.Observacao),
	)

	var created Registro
	if err := row.Scan(&created.ID, &created.Matricula, &created.Nome, &created.Estado, &created.Observacao, &created.CriadoEm); err != nil {
		return Registro{}, err
	}
	return created, nil
}

// CreateAlerta insere um alerta com snapshot do registro que o originou.
func (r *Repository) CreateAlerta(ctx context.Context, alerta Alerta) (Alerta, error) {
	const query = `
        INSERT INTO alertas_emociograma (matricula, nome, estado, observacao, lider_matricula, supervisor_matricula, notificado)
        VALUES ($1, $2, $3, $4, $5, $6, FALSE)
        RETURNING id, matricula, nome, estado, observacao, lider_matricula, supervisor_matricula, notificado, resolvido, resolvido_em, criado_em
    `

	row := r.pool.QueryRow(ctx, query,
		alerta.Matricula,
		alerta.Nome,
		NormalizeEstado(alerta.Estado),
		strings.TrimSpace(alerta.Observacao),
		alerta.LiderMatricula,
		alerta.SupervisorMatricula,
	)

	return scanAlerta(row)
}

// GetAlerta busca um alerta específico.
func (r *Repository) GetAlerta(ctx context.Context, id uuid.UUID) (Alerta, error) {
	const query = `
        SELECT id, matricula, nome, estado, observacao, lider_matricula, supervisor_matricula, notificado, resolvido, resolvido_em, criado_em
        FROM alertas_emociograma
        WHERE id = $1
    `

	return scanAlerta(r.pool.QueryRow(ctx, query, id))
}

// ListAlertas lista alertas aplicando filtros simples.
func (r *Repository) ListAlertas(ctx context.Context, filtro Filtro) ([]Alerta, error) {
	base := `
        SELECT id, matricula, nome, estado, observacao, lider_matricula, supervisor_matricula, notificado, resolvido, resolvido_em, criado_em
        FROM alertas_emociograma`

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filtro.Estado != "" {
		clauses = append(clauses, fmt.Sprintf("estado = $%d", idx))
		args = append(args, NormalizeEstado(filtro.Estado))
		idx++
	}

	if filtro.Resolvido != nil {
		clauses = append(clauses, fmt.Sprintf("resolvido = $%d", idx))
		args = append(args, *filtro.Resolvido)
		idx++
	}

	query := base
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	limit := filtro.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filtro.Offset
	if offset < 0 {
		offset = 0
	}

	query += fmt.Sprintf(" ORDER BY criado_em DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alertas []Alerta
	for rows.Next() {
		alerta, err := scanAlerta(rows)
		if err != nil {
			return nil, err
		}
		alertas = append(alertas, alerta)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return alertas, nil
}

// SetNotificado marca o alerta como notificado. É a guarda de idempotência
// contra duplo disparo: quem escalona consulta a flag antes de despachar.
func (r *Repository) SetNotificado(ctx context.Context, id uuid.UUID) error {
	const query = `
        UPDATE alertas_emociograma
        SET notificado = TRUE
        WHERE id = $1
    `

	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// MarcarResolvido fecha o alerta. Alertas já resolvidos não reabrem.
func (r *Repository) MarcarResolvido(ctx context.Context, id uuid.UUID) (Alerta, error) {
	const query = `
        UPDATE alertas_emociograma
        SET resolvido = TRUE,
            resolvido_em = now()
        WHERE id = $1
          AND NOT resolvido
        RETURNING id, matricula, nome, estado, observacao, lider_matricula, supervisor_matricula, notificado, resolvido, resolvido_em, criado_em
    `

	alerta, err := scanAlerta(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, ErrNotFound) {
		// distingue inexistente de já resolvido
		if _, getErr := r.GetAlerta(ctx, id); getErr == nil {
			return Alerta{}, ErrJaResolvido
		}
		return Alerta{}, ErrNotFound
	}
	return alerta, err
}

// CreateNotificacao insere uma notificação com snapshot imutável.
func (r *Repository) CreateNotificacao(ctx context.Context, notif Notificacao) (Notificacao, error) {
	const query = `
        INSERT INTO notificacoes_emociograma (alerta_id, destinatario, papel, nome, estado, observacao, registrado_em)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, alerta_id, destinatario, papel, nome, estado, observacao, registrado_em, lida, criado_em
    `

	row := r.pool.QueryRow(ctx, query,
		notif.AlertaID,
		notif.Destinatario,
		notif.Papel,
		notif.Nome,
		notif.Estado,
		notif.Observacao,
		notif.RegistradoEm,
	)

	return scanNotificacao(row)
}

// ListNotificacoes lista notificações do destinatário, mais recentes primeiro.
func (r *Repository) ListNotificacoes(ctx context.Context, destinatario int64) ([]Notificacao, error) {
	const query = `
        SELECT id, alerta_id, destinatario, papel, nome, estado, observacao, registrado_em, lida, criado_em
        FROM notificacoes_emociograma
        WHERE destinatario = $1
        ORDER BY criado_em DESC
    `

	rows, err := r.pool.Query(ctx, query, destinatario)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notificacoes []Notificacao
	for rows.Next() {
		notif, err := scanNotificacao(rows)
		if err != nil {
			return nil, err
		}
		notificacoes = append(notificacoes, notif)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return notificacoes, nil
}

// MarcarLida marca como lida uma notificação do próprio destinatário.
func (r *Repository) MarcarLida(ctx context.Context, id uuid.UUID, destinatario int64) error {
	const query = `
        UPDATE notificacoes_emociograma
        SET lida = TRUE
        WHERE id = $1
          AND destinatario = $2
    `

	tag, err := r.pool.Exec(ctx, query, id, destinatario)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotifNaoEncontrada
	}
	return nil
}

// CreateTratativa insere a tratativa de um alerta.
func (r *Repository) CreateTratativa(ctx context.Context, tratativa Tratativa) (Tratativa, error) {
	const query = `
        INSERT INTO tratativas (alerta_id, autor, descricao)
        VALUES ($1, $2, $3)
        RETURNING id, alerta_id, autor, descricao, criado_em
    `

	row := r.pool.QueryRow(ctx, query,
		tratativa.AlertaID,
		tratativa.Autor,
		strings.TrimSpace(tratativa.Descricao),
	)

	var created Tratativa
	if err := row.Scan(&created.ID, &created.AlertaID, &created.Autor, &created.Descricao, &created.CriadoEm); err != nil {
		return Tratativa{}, err
	}
	return created, nil
}

// ListTratativas lista tratativas de um alerta em ordem cronológica.
func (r *Repository) ListTratativas(ctx context.Context, alertaID uuid.UUID) ([]Tratativa, error) {
	const query = `
        SELECT id, alerta_id, autor, descricao, criado_em
        FROM tratativas
        WHERE alerta_id = $1
        ORDER BY criado_em ASC
    `

	rows, err := r.pool.Query(ctx, query, alertaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tratativas []Tratativa
	for rows.Next() {
		var t Tratativa
		if err := rows.Scan(&t.ID, &t.AlertaID, &t.Autor, &t.Descricao, &t.CriadoEm); err != nil {
			return nil, err
		}
		tratativas = append(tratativas, t)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return tratativas, nil
}

func scanAlerta(row pgx.Row) (Alerta, error) {
	var a Alerta
	if err := row.Scan(&a.ID, &a.Matricula, &a.Nome, &a.Estado, &a.Observacao, &a.LiderMatricula, &a.SupervisorMatricula, &a.Notificado, &a.Resolvido, &a.ResolvidoEm, &a.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Alerta{}, ErrNotFound
		}
		return Alerta{}, err
	}
	return a, nil
}

func scanNotificacao(row pgx.Row) (Notificacao, error) {
	var n Notificacao
	if err := row.Scan(&n.ID, &n.AlertaID, &n.Destinatario, &n.Papel, &n.Nome, &n.Estado, &n.Observacao, &n.RegistradoEm, &n.Lida, &n.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Notificacao{}, ErrNotifNaoEncontrada
		}
		return Notificacao{}, err
	}
	return n, nil
}
