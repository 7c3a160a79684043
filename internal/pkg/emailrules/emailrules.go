package emailrules

import (
	"fmt"
	"strings"

	apperrors "github.com/teamturing/competition-api/internal/pkg/errors"
)

// Пакет emailrules проверяет, похож ли адрес на школьную почту.
// Проверка рекомендательная: всё, что не попало в deny-списки, пропускается,
// финальным фильтром служит база участников соревнования.

// personalDomains — персональные почтовые сервисы, запрещенные для school email.
var personalDomains = map[string]struct{}{
	"gmail.com":      {},
	"yahoo.com":      {},
	"yahoo.co.uk":    {},
	"yahoo.fr":       {},
	"yahoo.de":       {},
	"yahoo.es":       {},
	"yahoo.it":       {},
	"hotmail.com":    {},
	"outlook.com":    {},
	"live.com":       {},
	"msn.com":        {},
	"aol.com":        {},
	"icloud.com":     {},
	"me.com":         {},
	"mac.com":        {},
	"protonmail.com": {},
	"proton.me":      {},
	"zoho.com":       {},
	"yandex.com":     {},
	"mail.com":       {},
	"gmx.com":        {},
	"gmx.net":        {},
	"fastmail.com":   {},
	"tutanota.com":   {},
	"tutanota.de":    {},
	"mailbox.org":    {},
	"posteo.de":      {},
	"runbox.com":     {},
	"qq.com":         {},
	"163.com":        {},
	"126.com":        {},
	"sina.com":       {},
	"foxmail.com":    {},
}

// disposableDomains — одноразовые почтовые сервисы. Для них дополнительно
// блокируются поддомены (mail.tempmail.com и т.п.).
var disposableDomains = []string{
	"tempmail.com",
	"guerrillamail.com",
	"mailinator.com",
	"10minutemail.com",
	"10minutemail.net",
	"throwaway.email",
	"yopmail.com",
	"maildrop.cc",
	"getairmail.com",
	"fakeinbox.com",
	"trashmail.com",
	"sharklasers.com",
	"spam4.me",
	"nada.email",
	"temp-mail.org",
	"temporarymail.net",
	"throwawaymail.com",
	"getnada.com",
	"tempmail.net",
	"tempmailaddress.com",
	"tempinbox.com",
	"burnermail.io",
	"mailnesia.com",
	"spambox.us",
	"throwaway.in",
	"mintemail.com",
	"tempmail.ninja",
	"emailondeck.com",
	"mohmal.com",
	"tmpmail.org",
	"tmpmail.net",
	"tmpeml.info",
	"instantmail.fr",
	"email-fake.com",
	"fakemailbox.com",
	"trash-mail.com",
	"mailcatch.com",
	"mailnull.com",
	"my10minutemail.com",
	"mailforspam.com",
	"emailfake.com",
	"email-fake.co.uk",
	"temp-inbox.com",
	"disposablemail.com",
	"wegwerfmail.de",
	"trash-mail.de",
	"temporaryinbox.com",
	"spamgourmet.com",
	"spambox.info",
	"spambox.org",
	"spambox.xyz",
	"spambox.me",
}

// Normalize приводит email к каноническому виду: trim + lowercase.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateSchoolEmail проверяет формат school email по deny-спискам.
// Возвращает ошибку, оборачивающую apperrors.ErrValidation, с сообщением для пользователя.
func ValidateSchoolEmail(email string) error {
	normalized := Normalize(email)
	if normalized == "" {
		return fmt.Errorf("%w: email address is required", apperrors.ErrValidation)
	}

	at := strings.LastIndex(normalized, "@")
	if at <= 0 || at == len(normalized)-1 {
		return fmt.Errorf("%w: invalid email format", apperrors.ErrValidation)
	}
	domain := normalized[at+1:]

	if _, ok := personalDomains[domain]; ok {
		return fmt.Errorf("%w: please use your school email address, personal email addresses are not allowed", apperrors.ErrValidation)
	}

	for _, d := range disposableDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return fmt.Errorf("%w: temporary or disposable email addresses are not allowed, please use your school email", apperrors.ErrValidation)
		}
	}

	// Не требуем .edu/.ac — у многих школ обычные домены,
	// окончательную проверку делает база участников.
	return nil
}

// IsLikelySchoolEmail возвращает true, если домен похож на учебный.
// Используется только для подсказок в UI, не для отказов.
func IsLikelySchoolEmail(email string) bool {
	normalized := Normalize(email)
	at := strings.LastIndex(normalized, "@")
	if at <= 0 {
		return false
	}
	domain := normalized[at+1:]

	indicators := []string{".edu", ".ac.", ".school", "university", "college", "institut", "academy"}
	for _, ind := range indicators {
		if strings.Contains(domain, ind) {
			return true
		}
	}
	return false
}
