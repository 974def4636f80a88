// Package apperr define a taxonomia de erros do domínio e a conversão
// para respostas HTTP.
package apperr

import (
	"errors"
	"unicode"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrDuplicateKey      = errors.New("identificador já cadastrado")
	ErrAuthFailed        = errors.New("usuário ou senha incorretos")
	ErrForbidden         = errors.New("você não tem permissão para esta operação")
	ErrSelfDelete        = errors.New("não é possível excluir a própria conta em uso")
	ErrInvalidTransition = errors.New("transição de status não permitida")
	ErrEmptySelection    = errors.New("selecione pelo menos uma solicitação para exportar")
	ErrValidation        = errors.New("dados inválidos")
	ErrNotFound          = errors.New("registro não encontrado")
	ErrInUse             = errors.New("registro em uso")
	ErrConflict          = errors.New("o registro foi alterado por outra operação, recarregue e tente novamente")
)

var statusByErr = []struct {
	err    error
	status int
}{
	{ErrDuplicateKey, fiber.StatusConflict},
	{ErrAuthFailed, fiber.StatusUnauthorized},
	{ErrForbidden, fiber.StatusForbidden},
	{ErrSelfDelete, fiber.StatusForbidden},
	{ErrInvalidTransition, fiber.StatusConflict},
	{ErrEmptySelection, fiber.StatusBadRequest},
	{ErrValidation, fiber.StatusBadRequest},
	{ErrNotFound, fiber.StatusNotFound},
	{ErrInUse, fiber.StatusConflict},
	{ErrConflict, fiber.StatusConflict},
}

// Status devolve o código HTTP de um erro do domínio (500 se desconhecido).
func Status(err error) int {
	for _, s := range statusByErr {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return fiber.StatusInternalServerError
}

// ToFiber converte um erro de serviço em *fiber.Error. Erros desconhecidos
// seguem como estão para o ErrorHandler registrar e responder 500.
func ToFiber(err error) error {
	if err == nil {
		return nil
	}
	status := Status(err)
	if status == fiber.StatusInternalServerError {
		return err
	}
	if errors.Is(err, ErrAuthFailed) {
		// Não diferenciar usuário inexistente de senha errada
		return fiber.NewError(status, ErrAuthFailed.Error())
	}
	return fiber.NewError(status, message(err))
}

// message deixa a mensagem com inicial maiúscula, como nas respostas da API.
func message(err error) string {
	msg := err.Error()
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}
