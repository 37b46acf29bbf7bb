package respond

import (
	"regexp"
)

var (
	// Paystack のシークレットキー (sk_live_..., sk_test_...)
	paystackKeyPattern = regexp.MustCompile(`sk_(live|test)_[a-zA-Z0-9]+`)
	// Resend の API キー
	resendKeyPattern = regexp.MustCompile(`\bre_[a-zA-Z0-9_]{8,}`)
	// Authorization ヘッダーのトークン
	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-_.=]+`)

	// DSN / CLOUDINARY_URL 内のパスワード
	dsnPasswordPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	msg = paystackKeyPattern.ReplaceAllString(msg, "sk_${1}_****")
	msg = resendKeyPattern.ReplaceAllString(msg, "re_****")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer ****")

	msg = dsnPasswordPattern.ReplaceAllString(msg, "://$1:****@")

	return msg
}
