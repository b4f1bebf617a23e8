package comite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/systemmax/sst/internal/db"
)

// Repository provê acesso às tabelas de comitês de boas práticas.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere o comitê e seus membros em uma transação.
func (r *Repository) Create(ctx context.Context, comite Comite, matriculas []int64) (Comite, error) {
	var created Comite

	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		const query = `
            INSERT INTO boaspraticas_comite (nome, tipo, contrato)
            VALUES ($1, $2, $3)
            RETURNING id, nome, tipo, contrato, criado_em
        `

		if err := tx.QueryRow(ctx, query, comite.Nome, comite.Tipo, comite.Contrato).
			Scan(&created.ID, &created.Nome, &created.Tipo, &created.Contrato, &created.CriadoEm); err != nil {
			return err
		}

		return insertMembros(ctx, tx, created.ID, matriculas)
	})
	if err != nil {
		return Comite{}, err
	}

	return r.Get(ctx, created.ID)
}

// Update substitui o comitê por inteiro: os membros são apagados e
// reinseridos junto com os novos dados, na mesma transação.
func (r *Repository) Update(ctx context.Context, comite Comite, matriculas []int64) (Comite, error) {
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		const query = `
            UPDATE boaspraticas_comite
            SET nome = $2,
                tipo = $3,
                contrato = $4
            WHERE id = $1
        `

		tag, err := tx.Exec(ctx, query, comite.ID, comite.Nome, comite.Tipo, comite.Contrato)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM boaspraticas_comite_membros WHERE comite_id = $1`, comite.ID); err != nil {
			return err
		}

		return insertMembros(ctx, tx, comite.ID, matriculas)
	})
	if err != nil {
		return Comite{}, err
	}

	return r.Get(ctx, comite.ID)
}

// Delete remove o comitê e seus membros definitivamente.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM boaspraticas_comite_membros WHERE comite_id = $1`, id); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM boaspraticas_comite WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Get busca um comitê com seus membros.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Comite, error) {
	const query = `
        SELECT id, nome, tipo, contrato, criado_em
        FROM boaspraticas_comite
        WHERE id = $1
    `

	var c Comite
	if err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Nome, &c.Tipo, &c.Contrato, &c.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comite{}, ErrNotFound
		}
		return Comite{}, err
	}

	membros, err := r.listMembros(ctx, id)
	if err != nil {
		return Comite{}, err
	}
	c.Membros = membros

	return c, nil
}

// List lista comitês com busca textual e filtro por tipo.
func (r *Repository) List(ctx context.Context, filtro Filtro) ([]Comite, error) {
	base := `
        SELECT id, nome, tipo, contrato, criado_em
        FROM boaspraticas_comite`

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if busca := strings.TrimSpace(filtro.Busca); busca != "" {
		clauses = append(clauses, fmt.Sprintf("nome ILIKE $%d", idx))
		args = append(args, "%"+busca+"%")
		idx++
	}

	if filtro.Tipo != "" {
		clauses = append(clauses, fmt.Sprintf("tipo = $%d", idx))
		args = append(args, filtro.Tipo)
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

	var comites []Comite
	for rows.Next() {
		var c Comite
		if err := rows.Scan(&c.ID, &c.Nome, &c.Tipo, &c.Contrato, &c.CriadoEm); err != nil {
			return nil, err
		}
		comites = append(comites, c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range comites {
		membros, err := r.listMembros(ctx, comites[i].ID)
		if err != nil {
			return nil, err
		}
		comites[i].Membros = membros
	}

	return comites, nil
}

// Existe verifica unicidade de comitê por tipo/contrato, ignorando o
// próprio comitê durante edição.
func (r *Repository) Existe(ctx context.Context, tipo string, contrato *string, excluir *uuid.UUID) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1
            FROM boaspraticas_comite
            WHERE tipo = $1
              AND ($2::text IS NULL OR contrato = $2)
              AND ($3::uuid IS NULL OR id <> $3)
        )
    `

	var existe bool
	if err := r.pool.QueryRow(ctx, query, tipo, contrato, excluir).Scan(&existe); err != nil {
		return false, err
	}
	return existe, nil
}

func (r *Repository) listMembros(ctx context.Context, comiteID uuid.UUID) ([]Membro, error) {
	const query = `
        SELECT m.matricula, u.nome
        FROM boaspraticas_comite_membros m
        JOIN usuarios u ON u.matricula = m.matricula
        WHERE m.comite_id = $1
        ORDER BY u.nome ASC
    `

	rows, err := r.pool.Query(ctx, query, comiteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var membros []Membro
	for rows.Next() {
		var m Membro
		if err := rows.Scan(&m.Matricula, &m.Nome); err != nil {
			return nil, err
		}
		membros = append(membros, m)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return membros, nil
}

func insertMembros(ctx context.Context, tx pgx.Tx, comiteID uuid.UUID, matriculas []int64) error {
	const query = `
        INSERT INTO boaspraticas_comite_membros (comite_id, matricula)
        VALUES ($1, $2)
    `

	for _, matricula := range matriculas {
		if _, err := tx.Exec(ctx, query, comiteID, matricula); err != nil {
			return err
		}
	}
	return nil
}
