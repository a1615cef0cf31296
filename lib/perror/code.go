package perror

// Code is a SQLSTATE error code.
type Code string

const (
	InvalidAuthorizationSpecification Code = "28000"
	InvalidPassword                   Code = "28P01"
	InternalError                     Code = "XX000"
)
