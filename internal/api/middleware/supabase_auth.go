package middleware

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Stattrackrr/stattrackr-sub000/pkg/utils"
)

// SupabaseAuthMiddleware handles Supabase JWT token validation
type SupabaseAuthMiddleware struct {
	supabaseURL string
	httpClient  *http.Client

	mu   sync.RWMutex
	keys map[string]*rsa.PublicKey
}

// SupabaseClaims represents Supabase JWT claims
type SupabaseClaims struct {
	Role         string                 `json:"role"`
	Email        string                 `json:"email,omitempty"`
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// JWKSResponse represents the JWKS endpoint response
type JWKSResponse struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a JSON Web Key
type JWK struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// NewSupabaseAuthMiddleware creates a new Supabase authentication middleware
func NewSupabaseAuthMiddleware(supabaseURL string) *SupabaseAuthMiddleware {
	return &SupabaseAuthMiddleware{
		supabaseURL: supabaseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		keys:        make(map[string]*rsa.PublicKey),
	}
}

// AuthRequired validates Supabase JWT tokens and rejects unauthenticated
// requests.
func (m *SupabaseAuthMiddleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			utils.SendUnauthorized(c, "Bearer token required")
			c.Abort()
			return
		}

		claims, err := m.validateToken(tokenString)
		if err != nil {
			utils.SendUnauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			utils.SendUnauthorized(c, "Invalid user ID format")
			c.Abort()
			return
		}

		setUserContext(c, userID, claims)
		c.Next()
	}
}

// AuthOptional validates Supabase JWT tokens when present but lets anonymous
// requests through.
func (m *SupabaseAuthMiddleware) AuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Set("authenticated", false)
			c.Next()
			return
		}

		claims, err := m.validateToken(tokenString)
		if err != nil {
			c.Set("authenticated", false)
			c.Next()
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.Set("authenticated", false)
			c.Next()
			return
		}

		setUserContext(c, userID, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return "", false
	}
	return tokenString, true
}

func setUserContext(c *gin.Context, userID uuid.UUID, claims *SupabaseClaims) {
	c.Set("user_id", userID)
	c.Set("user_claims", claims)
	c.Set("authenticated", true)
	if claims.Email != "" {
		c.Set("user_email", claims.Email)
	}
}

// validateToken verifies the signature against the Supabase JWKS and checks
// the Supabase-specific claims.
func (m *SupabaseAuthMiddleware) validateToken(tokenString string) (*SupabaseClaims, error) {
	// Parse without verification first to get the kid
	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, &SupabaseClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	kid, ok := token.Header["kid"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid kid in token header")
	}

	publicKey, err := m.getPublicKey(kid)
	if err != nil {
		return nil, fmt.Errorf("failed to get public key: %w", err)
	}

	parsedToken, err := jwt.ParseWithClaims(tokenString, &SupabaseClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !parsedToken.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	claims, ok := parsedToken.Claims.(*SupabaseClaims)
	if !ok {
		return nil, fmt.Errorf("failed to extract claims")
	}

	if claims.Role != "authenticated" {
		return nil, fmt.Errorf("invalid user role: %s", claims.Role)
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, fmt.Errorf("token is expired")
	}

	return claims, nil
}

// getPublicKey returns the cached key for kid, fetching the JWKS on a miss.
func (m *SupabaseAuthMiddleware) getPublicKey(kid string) (*rsa.PublicKey, error) {
	m.mu.RLock()
	key, ok := m.keys[kid]
	m.mu.RUnlock()
	if ok {
		return key, nil
	}

	jwksURL := fmt.Sprintf("%s/auth/v1/jwks", m.supabaseURL)
	resp, err := m.httpClient.Get(jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS request failed with status %d", resp.StatusCode)
	}

	var jwksResp JWKSResponse
	if err := json.NewDecoder(resp.Body).Decode(&jwksResp); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS response: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, jwk := range jwksResp.Keys {
		if jwk.Kty != "RSA" {
			continue
		}
		parsed, err := parseRSAPublicKey(jwk)
		if err != nil {
			continue
		}
		m.keys[jwk.Kid] = parsed
	}

	if key, ok := m.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("public key not found for kid: %s", kid)
}

// parseRSAPublicKey converts a JWK's base64url modulus and exponent into an
// rsa.PublicKey.
func parseRSAPublicKey(jwk JWK) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e <= 1 {
		return nil, fmt.Errorf("invalid exponent value")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, fmt.Errorf("user ID not found in context")
	}

	uid, ok := userID.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid user ID type in context")
	}

	return uid, nil
}

// IsAuthenticated checks if the request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	authenticated, exists := c.Get("authenticated")
	if !exists {
		return false
	}

	auth, ok := authenticated.(bool)
	return ok && auth
}
