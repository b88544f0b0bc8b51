package task

// единая таблица переходов вместо сравнения строк по всем хендлерам
var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusPending:   true,
		StatusWorking:   true,
		StatusCompleted: true,
	},
	StatusWorking: {
		StatusWorking:   true,
		StatusCompleted: true,
	},
	// Completed - терминальный статус
	StatusCompleted: {},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition проверяет допустимость перехода текущий -> новый.
// Переход в тот же статус разрешён (фоллоу-ап с заметкой без смены статуса).
func (s Status) CanTransition(next Status) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	return allowed[next]
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// RequiresCompletionDate - для Completed дата завершения обязательна
func (s Status) RequiresCompletionDate() bool {
	return s == StatusCompleted
}
