package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries provê acesso às tabelas de identidade e hierarquia.
type Queries struct {
	pool *pgxpool.Pool
}

// New cria instância de Queries sobre o pool.
func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

const usuarioColumns = `matricula, nome, email, senha_hash, perfil, funcao, equipe_id, letra_id, contrato, ativo`

// GetUsuario busca colaborador pela matrícula.
func (q *Queries) GetUsuario(ctx context.Context, matricula int64) (Usuario, error) {
	const query = `
        SELECT ` + usuarioColumns + `
        FROM usuarios
        WHERE matricula = $1
    `

	return scanUsuario(q.pool.QueryRow(ctx, query, matricula))
}

// GetUsuarioByEmail busca colaborador pelo e-mail, usado no login.
func (q *Queries) GetUsuarioByEmail(ctx context.Context, email string) (Usuario, error) {
	const query = `
        SELECT ` + usuarioColumns + `
        FROM usuarios
        WHERE lower(email) = lower($1)
    `

	return scanUsuario(q.pool.QueryRow(ctx, query, email))
}

// GetUsuariosAtivos devolve os colaboradores ativos do conjunto informado.
func (q *Queries) GetUsuariosAtivos(ctx context.Context, matriculas []int64) ([]Usuario, error) {
	const query = `
        SELECT ` + usuarioColumns + `
        FROM usuarios
        WHERE matricula = ANY($1)
          AND ativo
    `

	rows, err := q.pool.Query(ctx, query, matriculas)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usuarios []Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, err
		}
		usuarios = append(usuarios, u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return usuarios, nil
}

// GetEquipe busca equipe pelo identificador.
func (q *Queries) GetEquipe(ctx context.Context, id uuid.UUID) (Equipe, error) {
	const query = `
        SELECT id, nome, supervisor_matricula
        FROM equipes
        WHERE id = $1
    `

	var e Equipe
	if err := q.pool.QueryRow(ctx, query, id).Scan(&e.ID, &e.Nome, &e.SupervisorMatricula); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Equipe{}, ErrNotFound
		}
		return Equipe{}, err
	}
	return e, nil
}

// GetLetra busca letra pelo identificador.
func (q *Queries) GetLetra(ctx context.Context, id uuid.UUID) (Letra, error) {
	const query = `
        SELECT id, nome, lider_matricula
        FROM letras
        WHERE id = $1
    `

	var l Letra
	if err := q.pool.QueryRow(ctx, query, id).Scan(&l.ID, &l.Nome, &l.LiderMatricula); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Letra{}, ErrNotFound
		}
		return Letra{}, err
	}
	return l, nil
}

// GetFallbackAdministrativo devolve o admin/editor ativo de menor matrícula.
// A ordenação torna a escolha determinística entre execuções.
func (q *Queries) GetFallbackAdministrativo(ctx context.Context) (Usuario, error) {
	const query = `
        SELECT ` + usuarioColumns + `
        FROM usuarios
        WHERE perfil IN ($1, $2)
          AND ativo
        ORDER BY matricula ASC
        LIMIT 1
    `

	return scanUsuario(q.pool.QueryRow(ctx, query, PerfilAdmin, PerfilEditor))
}

// GetContrato busca contrato pelo código.
func (q *Queries) GetContrato(ctx context.Context, codigo string) (Contrato, error) {
	const query = `
        SELECT codigo, descricao
        FROM contratos
        WHERE codigo = $1
    `

	var c Contrato
	if err := q.pool.QueryRow(ctx, query, codigo).Scan(&c.Codigo, &c.Descricao); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contrato{}, ErrNotFound
		}
		return Contrato{}, err
	}
	return c, nil
}

// ListContratos lista contratos cadastrados.
func (q *Queries) ListContratos(ctx context.Context) ([]Contrato, error) {
	const query = `
        SELECT codigo, descricao
        FROM contratos
        ORDER BY codigo ASC
    `

	rows, err := q.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contratos []Contrato
	for rows.Next() {
		var c Contrato
		if err := rows.Scan(&c.Codigo, &c.Descricao); err != nil {
			return nil, err
		}
		contratos = append(contratos, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return contratos, nil
}

func scanUsuario(row pgx.Row) (Usuario, error) {
	var u Usuario
	if err := row.Scan(&u.Matricula, &u.Nome, &u.Email, &u.SenhaHash, &u.Perfil, &u.Funcao, &u.EquipeID, &u.LetraID, &u.Contrato, &u.Ativo); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Usuario{}, ErrNotFound
		}
		return Usuario{}, err
	}
	return u, nil
}
