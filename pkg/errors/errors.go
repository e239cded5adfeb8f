package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeEmptyCart    Code = "EMPTY_CART"
	CodeRejected     Code = "REMOTE_REJECTED"
	CodeUnavailable  Code = "REMOTE_UNAVAILABLE"
	CodeStorage      Code = "STORAGE_ERROR"
	CodeConflict     Code = "CONFLICT"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// Metadata describes how a code should be surfaced to the person holding
// the phone: whether a retry makes sense, whether the failure is only a
// warning, and the default French copy shown when the remote service did
// not provide its own message.
type Metadata struct {
	Retryable   bool
	Warning     bool
	UserMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Retryable:   false,
		UserMessage: "Veuillez vérifier les informations saisies",
	},
	CodeUnauthorized: {
		Retryable:   false,
		UserMessage: "Vous devez être connecté pour continuer",
	},
	CodeForbidden: {
		Retryable:   false,
		UserMessage: "Accès refusé",
	},
	CodeNotFound: {
		Retryable:   false,
		UserMessage: "Ressource introuvable",
	},
	CodeEmptyCart: {
		Retryable:   false,
		UserMessage: "Ajoutez des produits à votre panier avant de passer commande",
	},
	CodeRejected: {
		Retryable:   false,
		UserMessage: "Opération refusée",
	},
	CodeUnavailable: {
		Retryable:   true,
		UserMessage: "Service momentanément indisponible, veuillez réessayer",
	},
	CodeStorage: {
		Retryable:   false,
		Warning:     true,
		UserMessage: "Vos données n'ont pas pu être sauvegardées sur l'appareil",
	},
	CodeConflict: {
		Retryable:   false,
		UserMessage: "Une opération est déjà en cours",
	},
	CodeInternal: {
		Retryable:   true,
		UserMessage: "Une erreur inattendue s'est produite",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// IsRetryable reports whether the caller may reasonably offer a retry for
// the given error. Non-domain errors are treated as internal, hence retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return MetadataFor(As(err).Code()).Retryable
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// UserMessage returns the copy to display: the error's own message when the
// code allows surfacing it verbatim (remote rejections carry the remote's
// reason), otherwise the default copy for the code.
func (e *Error) UserMessage() string {
	if e == nil {
		return MetadataFor(CodeInternal).UserMessage
	}
	if e.code == CodeRejected && e.message != "" {
		return e.message
	}
	return MetadataFor(e.code).UserMessage
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
