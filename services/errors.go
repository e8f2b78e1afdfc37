package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed      = errors.New("validation failed")
	ErrPasswordTooShort      = errors.New("password is too short")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrBabaNameRequired      = errors.New("baba name is required")
	ErrInvalidGameTime       = errors.New("game_time must be HH:MM")
	ErrInvalidGameDays       = errors.New("game_days must contain weekdays 0-6")
	ErrInvalidPlayersPerTeam = errors.New("players_per_team must be between 2 and 11")
	ErrInvalidDrawStrategy   = errors.New("draw strategy must be reserve or substitute")

	// Окно подтверждения присутствия
	ErrNotRegistered          = errors.New("player is not registered in this baba")
	ErrConfirmationClosed     = errors.New("confirmation window is closed")
	ErrAlreadyConfirmed       = errors.New("presence already confirmed for this date")
	ErrNoConfirmationToCancel = errors.New("no confirmation to cancel for this date")

	// Жеребьёвка и живая игра
	ErrInsufficientPlayers = errors.New("not enough confirmed players for a draw")
	ErrDrawInFlight        = errors.New("a draw is already in progress for this date")
	ErrNoDrawToday         = errors.New("no draw result for this date")
	ErrNoActiveSession     = errors.New("no active play session for this baba")
	ErrSessionExists       = errors.New("a play session is already running for this baba")

	// Вступление по коду приглашения
	ErrInvalidInviteCode = errors.New("invalid invite code")
	ErrAlreadyMember     = errors.New("user is already a member of this baba")

	// Ошибки конфликтов
	ErrUserEmailConflict = errors.New("email address is already in use")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrUnauthorizedAction   = errors.New("only the baba president can perform this action")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound   = errors.New("user not found")
	ErrBabaNotFound   = errors.New("baba not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrMatchNotFound  = errors.New("match not found")

	// Хранилище эмблем
	ErrCrestStorageUnavailable = errors.New("crest storage is not configured")
)
