package authn

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/heimsharon/booksearch/internal/logging"
	"github.com/heimsharon/booksearch/internal/token"
)

// CtxUser is the echo context key under which the verified claims are stored.
// Absent or nil means the request is anonymous.
const CtxUser = "user"

const bearerPrefix = "Bearer "

// maxTokenPeek bounds how much of a JSON body is buffered while looking for
// the top-level "token" field. Bodies larger than this are passed through to
// the handler untouched beyond the buffered prefix.
const maxTokenPeek = 64 << 10

// Middleware resolves the request credential into an identity context.
//
// It never rejects a request on its own: a missing, malformed or expired
// token all leave the identity empty and let the handler decide. That a
// slightly-wrong token degrades to anonymous instead of a 401 is carried
// over from the original service on purpose.
func Middleware(codec *token.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := ExtractToken(c)
			if raw == "" {
				return next(c)
			}

			claims, err := codec.Verify(raw)
			if err != nil {
				logging.FromContext(c.Request().Context()).Warn("credential rejected, proceeding as anonymous", "error", err)
				return next(c)
			}

			c.Set(CtxUser, claims)
			return next(c)
		}
	}
}

// ExtractToken picks a single candidate credential from the request.
// Precedence: JSON body field "token", query parameter "token", then the
// Authorization header with the Bearer scheme.
func ExtractToken(c echo.Context) string {
	if tok := tokenFromBody(c); tok != "" {
		return tok
	}

	if tok := strings.TrimSpace(c.QueryParam("token")); tok != "" {
		return tok
	}

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	}

	return ""
}

// tokenFromBody peeks at a JSON body for a top-level "token" field and
// re-buffers the body so handlers can still bind the request.
func tokenFromBody(c echo.Context) string {
	req := c.Request()
	if req.Body == nil || !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(req.Body, maxTokenPeek))
	req.Body = rewoundBody{io.MultiReader(bytes.NewReader(data), req.Body), req.Body}
	if err != nil {
		return ""
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}

	return strings.TrimSpace(body.Token)
}

// rewoundBody replays the peeked prefix ahead of whatever the peek did not
// consume, closing the original body.
type rewoundBody struct {
	io.Reader
	io.Closer
}

// CurrentUser returns the identity attached by the Middleware, if any.
func CurrentUser(c echo.Context) (*token.Claims, bool) {
	claims, ok := c.Get(CtxUser).(*token.Claims)
	return claims, ok && claims != nil
}
