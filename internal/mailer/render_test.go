package mailer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
)

func TestRenderTemplate(t *testing.T) {
	user := &models.User{
		FirstName: "Sara",
		LastName:  "Hassan",
		Title:     "Engineer",
		Phone:     "01012345678",
		Email:     "sara@example.com",
		Company:   "Acme",
	}

	t.Run("replaces every known placeholder", func(t *testing.T) {
		tmpl := `<p>Hi {{firstName}} {{lastName}} ({{title}}, {{company}})</p>` +
			`<p>{{email}} / {{phone}}</p><a href="https://x/accept?t={{token}}">go</a>{{qrCode}}`
		out := RenderTemplate(tmpl, user, "tok-123")

		assert.NotContains(t, out, "{{")
		assert.Contains(t, out, "Sara Hassan")
		assert.Contains(t, out, "Engineer, Acme")
		assert.Contains(t, out, "sara@example.com / 01012345678")
		assert.Contains(t, out, "t=tok-123")
		assert.Contains(t, out, "cid:"+QRAttachmentName)
	})

	t.Run("missing fields render empty", func(t *testing.T) {
		out := RenderTemplate("[{{company}}]", &models.User{}, "")
		assert.Equal(t, "[]", out)
	})

	t.Run("unknown placeholders left untouched", func(t *testing.T) {
		out := RenderTemplate("{{firstName}} {{middleName}}", user, "")
		assert.Equal(t, "Sara {{middleName}}", out)
	})

	t.Run("repeated placeholder replaced everywhere", func(t *testing.T) {
		out := RenderTemplate("{{firstName}}{{firstName}}", user, "")
		assert.Equal(t, "SaraSara", out)
	})
}

func TestCheckinQR(t *testing.T) {
	png, err := CheckinQR(42, 3)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "expected PNG output")
}

func TestXOAUTH2InitialResponse(t *testing.T) {
	got := xoauth2InitialResponse("sender@example.com", "ya29.token")
	want := "user=sender@example.com\x01auth=Bearer ya29.token\x01\x01"
	assert.Equal(t, want, string(got))
	assert.True(t, strings.HasSuffix(string(got), "\x01\x01"))
}
