package mailer

import (
	"strings"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
)

// Placeholders recognized in email templates. Substitution is literal
// substring replacement over this closed set; anything else in the
// template is left untouched.
var placeholders = []string{
	"firstName", "lastName", "title", "phone", "email", "company", "token", "qrCode",
}

// RenderTemplate substitutes the recognized {{placeholder}} tokens with the
// recipient's field values. Missing fields render as empty strings.
func RenderTemplate(template string, user *models.User, token string) string {
	values := map[string]string{
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"title":     user.Title,
		"phone":     user.Phone,
		"email":     user.Email,
		"company":   user.Company,
		"token":     token,
		"qrCode":    `<img src="cid:` + QRAttachmentName + `" alt="check-in QR code"/>`,
	}
	out := template
	for _, name := range placeholders {
		out = strings.ReplaceAll(out, "{{"+name+"}}", values[name])
	}
	return out
}
