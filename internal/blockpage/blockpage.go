// Package blockpage classifies fetched HTML that is technically a 2xx
// response but is actually an anti-bot challenge or a login wall.
package blockpage

import "strings"

// Classification of a raw HTML payload.
type Classification int

const (
	Clean Classification = iota
	SecurityCheck
	LoginRequired
)

func (c Classification) String() string {
	switch c {
	case SecurityCheck:
		return "security_check"
	case LoginRequired:
		return "login_required"
	default:
		return "clean"
	}
}

// Keyword sets must match the literal text the platforms render on their
// interstitial pages, including the Chinese UI strings.
var securityPatterns = []string{
	"系统监测到您的网络环境存在异常",
	"安全验证",
	"验证码",
	"unusual traffic",
	"security check",
	"captcha",
	"cf-challenge",
}

var loginPatterns = []string{
	"请先登录",
	"登录后查看",
	"sign in to continue",
	"log in to continue",
	"you must be logged in",
}

// Classify pattern-matches the raw payload. Purely advisory: callers log
// the result and let the normal fallback chain run, since the embedded
// state blob and the content API often still work behind a soft wall.
func Classify(html string) Classification {
	lower := strings.ToLower(html)
	for _, p := range securityPatterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return SecurityCheck
		}
	}
	for _, p := range loginPatterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return LoginRequired
		}
	}
	return Clean
}
