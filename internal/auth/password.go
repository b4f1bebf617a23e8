package auth

import (
	"github.com/alexedwards/argon2id"
)

var params = &argon2id.Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash gera um hash Argon2id com os parâmetros embutidos no próprio hash.
func Hash(senha string) (string, error) {
	return argon2id.CreateHash(senha, params)
}

// Verify compara a senha informada com o hash Argon2id armazenado.
func Verify(senha, encodedHash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(senha, encodedHash)
}
