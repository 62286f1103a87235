package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/custodian/internal/pkg/auth"
)

// SignatureHeader carries the webhook HMAC signature.
const SignatureHeader = "X-Alchemy-Signature"

// VerifySignature authenticates the raw request body against the webhook
// signing key before any JSON parsing happens. Unverifiable deliveries are
// rejected without processing. With no signing key configured the check is
// skipped.
func VerifySignature(verifier *pkgAuth.HMACVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !verifier.Enabled() {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		signature := c.GetHeader(SignatureHeader)
		if signature == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing signature"})
			return
		}
		if err := verifier.Verify(body, signature); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}

		c.Next()
	}
}
