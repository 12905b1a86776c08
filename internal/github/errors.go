package github

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrToolNotFound возвращается, если исполняемый файл gh не найден
	ErrToolNotFound = errors.New("gh CLI not found")
	// ErrNoData возвращается, если GraphQL ответ не содержит data
	ErrNoData = errors.New("response contains no data")
)

// CommandError описывает неуспешный запуск gh
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("gh %s exited with %d: %s", commandName(e.Args), e.ExitCode, e.Stderr)
}

// AuthError означает, что gh не авторизован или токен недействителен
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("github auth error: %s", e.Message)
}

// IsAuthError сообщает, есть ли AuthError в цепочке ошибок
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// GraphQLError содержит ошибки из поля errors GraphQL ответа
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "graphql: " + strings.Join(e.Messages, "; ")
}

// authMarkers фрагменты stderr gh, по которым распознается ошибка авторизации
var authMarkers = []string{
	"gh auth login",
	"HTTP 401",
	"Bad credentials",
	"authentication required",
}

func isAuthFailure(msg string) bool {
	for _, m := range authMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func commandName(args []string) string {
	switch {
	case len(args) == 0:
		return ""
	case len(args) == 1:
		return args[0]
	default:
		return args[0] + " " + args[1]
	}
}
