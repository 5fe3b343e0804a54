package mailer

import (
	"encoding/json"

	qrcode "github.com/skip2/go-qrcode"
)

// QRAttachmentName is the content-id under which the check-in QR code is
// embedded in invitation and confirmation emails.
const QRAttachmentName = "qrcode.png"

const qrSize = 256

type checkinPayload struct {
	UserID  int64 `json:"userId"`
	EventID int64 `json:"eventId"`
}

// CheckinQR encodes the (user, event) pair as a JSON payload inside a PNG
// QR code, scanned at the venue to drive check-in.
func CheckinQR(userID, eventID int64) ([]byte, error) {
	payload, err := json.Marshal(checkinPayload{UserID: userID, EventID: eventID})
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(payload), qrcode.Medium, qrSize)
}
