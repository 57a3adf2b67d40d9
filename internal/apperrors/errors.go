package apperrors

import "fmt"

// Code is the stable numeric error code surfaced to API clients.
// Numbering continues the 100-chain of the original deployment.
type Code int

const (
	CodeTelegramIDNotFound   Code = 100
	CodeInvalidTelegramData  Code = 101
	CodeUserNotFound         Code = 102
	CodeChatNotFound         Code = 103
	CodeChatAccessDenied     Code = 104
	CodeChatMemberNotFound   Code = 105
	CodeUsernameNotFound     Code = 106
	CodeMessageNotFound      Code = 107
	CodeMessageChatMismatch  Code = 108
	CodeMessageAccessDenied  Code = 109
	CodeFileHashNotFound     Code = 110
	CodeInvalidToken         Code = 111
	CodeChatDeletePermission Code = 112
)

// Error is a domain-rule violation carrying a code plus the arguments
// for the localized message template.
type Error struct {
	Code Code
	Args []any
}

func (e *Error) Error() string {
	return e.Message(DefaultLocale)
}

// Message renders the localized client message for the given locale,
// falling back to English.
func (e *Error) Message(locale string) string {
	templates, ok := messages[e.Code]
	if !ok {
		return fmt.Sprintf("error %d", e.Code)
	}
	tpl, ok := templates[locale]
	if !ok {
		tpl = templates["en"]
	}
	return fmt.Sprintf(tpl, e.Args...)
}

func newError(code Code, args ...any) *Error {
	return &Error{Code: code, Args: args}
}

func TelegramIDNotFound(id int64) *Error { return newError(CodeTelegramIDNotFound, id) }
func InvalidTelegramData(hash string) *Error {
	return newError(CodeInvalidTelegramData, hash)
}
func UserNotFound(id uint) *Error          { return newError(CodeUserNotFound, id) }
func ChatNotFound(id uint) *Error          { return newError(CodeChatNotFound, id) }
func ChatAccessDenied(role string) *Error  { return newError(CodeChatAccessDenied, role) }
func ChatMemberNotFound(userID uint) *Error {
	return newError(CodeChatMemberNotFound, userID)
}
func UsernameNotFound(username string) *Error {
	return newError(CodeUsernameNotFound, username)
}
func MessageNotFound(id uint) *Error { return newError(CodeMessageNotFound, id) }
func MessageChatMismatch(messageID, chatID uint) *Error {
	return newError(CodeMessageChatMismatch, messageID, chatID)
}
func MessageAccessDenied(sender string) *Error {
	return newError(CodeMessageAccessDenied, sender)
}
func FileHashNotFound(hash string) *Error { return newError(CodeFileHashNotFound, hash) }
func InvalidToken() *Error                { return newError(CodeInvalidToken) }
func ChatDeletePermission(name string) *Error {
	return newError(CodeChatDeletePermission, name)
}

const DefaultLocale = "en"

var messages = map[Code]map[string]string{
	CodeTelegramIDNotFound: {
		"en": "telegram id %d not found",
		"uz": "telegram id %d topilmadi",
	},
	CodeInvalidTelegramData: {
		"en": "telegram login data failed verification: %s",
		"uz": "telegram login ma'lumotlari tekshiruvdan o'tmadi: %s",
	},
	CodeUserNotFound: {
		"en": "user %d not found",
		"uz": "foydalanuvchi %d topilmadi",
	},
	CodeChatNotFound: {
		"en": "chat %d not found",
		"uz": "chat %d topilmadi",
	},
	CodeChatAccessDenied: {
		"en": "access denied for role %s",
		"uz": "%s roli uchun ruxsat yo'q",
	},
	CodeChatMemberNotFound: {
		"en": "user %d is not a member of this chat",
		"uz": "foydalanuvchi %d bu chat a'zosi emas",
	},
	CodeUsernameNotFound: {
		"en": "username %s not found",
		"uz": "%s foydalanuvchi nomi topilmadi",
	},
	CodeMessageNotFound: {
		"en": "message %d not found",
		"uz": "xabar %d topilmadi",
	},
	CodeMessageChatMismatch: {
		"en": "message %d does not belong to chat %d",
		"uz": "xabar %d chat %d ga tegishli emas",
	},
	CodeMessageAccessDenied: {
		"en": "only the sender %s may change this message",
		"uz": "faqat yuboruvchi %s bu xabarni o'zgartira oladi",
	},
	CodeFileHashNotFound: {
		"en": "no uploaded file matches hash %s",
		"uz": "%s hashiga mos yuklangan fayl yo'q",
	},
	CodeInvalidToken: {
		"en": "invalid or expired token",
		"uz": "token yaroqsiz yoki muddati o'tgan",
	},
	CodeChatDeletePermission: {
		"en": "%s is not allowed to delete this chat",
		"uz": "%s bu chatni o'chira olmaydi",
	},
}
