package config

import (
	"os"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
}

// unset clears variables for the test while still restoring any prior value.
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	unset(t,
		"HTTP_ADDR",
		"SHUTDOWN_TIMEOUT",
		"PRODUCTS_FILE",
		"IMAGE_DIR",
		"IMAGE_URL_PREFIX",
		"JWT_ALGORITHM",
		"ACCESS_TOKEN_EXPIRE_MINUTES",
		"SUBSCRIBER_BUFFER",
		"MAX_UPLOAD_BYTES",
	)
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr default")
	}
	if c.ShutdownTimeout != 15*time.Second {
		t.Fatalf("ShutdownTimeout default")
	}
	if c.ProductsFile != "products.json" || c.ImageDir != "product_images" {
		t.Fatalf("storage path defaults")
	}
	if c.ImageURLPrefix != "/product_images" {
		t.Fatalf("image prefix default")
	}
	if c.JWTAlgorithm != "HS256" {
		t.Fatalf("algorithm default")
	}
	if c.TokenLifetime() != 30*time.Minute {
		t.Fatalf("token lifetime default")
	}
	if c.SubscriberBuffer != 8 {
		t.Fatalf("subscriber buffer default")
	}
	if c.MaxUploadBytes != 10485760 {
		t.Fatalf("upload cap default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("PRODUCTS_FILE", "/tmp/p.json")
	t.Setenv("JWT_ALGORITHM", "HS512")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.HTTPAddr != ":9090" {
		t.Fatalf("HTTPAddr override")
	}
	if c.ProductsFile != "/tmp/p.json" {
		t.Fatalf("ProductsFile override")
	}
	if c.JWTAlgorithm != "HS512" {
		t.Fatalf("algorithm override")
	}
	if c.TokenLifetime() != 5*time.Minute {
		t.Fatalf("token lifetime override")
	}
}

func TestLoadMissingRequired(t *testing.T) {
	unset(t, "JWT_SECRET", "ADMIN_USERNAME", "ADMIN_PASSWORD_HASH")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing required vars")
	}
}
