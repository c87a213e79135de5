package service

// User-visible outcome messages. Failure texts are part of the API contract.
const (
	MsgUserNotFound          = "Пользователь не найден"
	MsgWrongPassword         = "Неверный пароль"
	MsgInvalidLogin          = "Неверный email или пароль"
	MsgEmailTaken            = "Пользователь с таким email уже существует"
	MsgRoleNotFound          = "Указанная роль не найдена"
	MsgWrongCurrentPassword  = "Неверный текущий пароль"
	MsgPasswordTooLong       = "Пароль слишком длинный"
	MsgLoginFailed           = "Ошибка при входе"
	MsgRegistrationFailed    = "Ошибка при регистрации"
	MsgPasswordChangeFailed  = "Ошибка при смене пароля"
	MsgProfileFailed         = "Ошибка при загрузке профиля"
	MsgRolesFailed           = "Ошибка при загрузке ролей"
	MsgLoginSucceeded        = "Вход выполнен успешно"
	MsgRegistrationSucceeded = "Регистрация выполнена успешно"
	MsgPasswordChanged       = "Пароль успешно изменен"
	MsgProfileLoaded         = "Профиль успешно загружен"
	MsgRolesLoaded           = "Роли успешно загружены"
	MsgInvalidPayload        = "Некорректный формат запроса"
	MsgValidationFailed      = "Некорректные данные запроса"
	MsgForeignPassword       = "Нельзя изменить пароль другого пользователя"
	MsgAccessGranted         = "Доступ разрешен"
	MsgCoursesLoaded         = "Список курсов получен"
	MsgAssignmentsLoaded     = "Список заданий получен"
	MsgStudentsLoaded        = "Список учеников получен"
	MsgMetricsLoaded         = "Метрики получены"
)
