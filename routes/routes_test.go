package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yashrajoria/storefront/controllers"
)

func TestCORSConfig(t *testing.T) {
	cfg := CORSConfig(nil)
	assert.True(t, cfg.AllowAllOrigins)
	assert.False(t, cfg.AllowCredentials)
	assert.NoError(t, cfg.Validate())

	cfg = CORSConfig([]string{"http://localhost:3000", "*"})
	assert.True(t, cfg.AllowAllOrigins)
	assert.Empty(t, cfg.AllowOrigins)

	cfg = CORSConfig([]string{"http://localhost:3000"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowOrigins)
	assert.Contains(t, cfg.ExposeHeaders, controllers.CartCountHeader)
	assert.NoError(t, cfg.Validate())
}
