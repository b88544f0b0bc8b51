package service

import "fmt"

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(resource string, id any) *BusinessError {
	return &BusinessError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %v не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewUnauthorized(reason string) *BusinessError {
	return &BusinessError{
		Code:    "UNAUTHORIZED",
		Message: reason,
	}
}

// NewTransitionError - отказ транзакции при многошаговом обновлении,
// вся работа откачена
func NewTransitionError(entity string, id any, err error) *BusinessError {
	return &BusinessError{
		Code:    "TRANSITION_ERROR",
		Message: fmt.Sprintf("Переход %s %v не применён", entity, id),
		Details: map[string]any{
			"entity": entity,
			"id":     id,
		},
		Err: err,
	}
}

func NewInvalidTransition(entity string, from, to string) *BusinessError {
	return &BusinessError{
		Code:    "INVALID_TRANSITION",
		Message: fmt.Sprintf("Переход %s -> %s недопустим", from, to),
		Details: map[string]any{
			"entity": entity,
			"from":   from,
			"to":     to,
		},
	}
}

func NewCompletedTerminal(entity string, id any) *BusinessError {
	return &BusinessError{
		Code:    "COMPLETED_TERMINAL",
		Message: fmt.Sprintf("%s %v уже завершён(а), дальнейшие переходы запрещены", entity, id),
		Details: map[string]any{
			"entity": entity,
			"id":     id,
		},
	}
}

func NewStorageError(action string, err error) *BusinessError {
	return &BusinessError{
		Code:    "STORAGE_ERROR",
		Message: fmt.Sprintf("Ошибка файлового хранилища: %s", action),
		Details: map[string]any{
			"action": action,
		},
		Err: err,
	}
}
