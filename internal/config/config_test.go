package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":3000" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":3000")
	}
	if cfg.JWTIssuer != "servease-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "servease-auth")
	}
	if cfg.JWTAudience != "servease-api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "servease-api")
	}
	if cfg.JWTAccessTTL != "15m" {
		t.Errorf("JWTAccessTTL = %q, want %q", cfg.JWTAccessTTL, "15m")
	}
	if cfg.JWTRefreshTTL != "168h" {
		t.Errorf("JWTRefreshTTL = %q, want %q", cfg.JWTRefreshTTL, "168h")
	}
	if cfg.Argon2MemoryKiB != 64*1024 {
		t.Errorf("Argon2MemoryKiB = %d, want %d", cfg.Argon2MemoryKiB, 64*1024)
	}
	if cfg.Argon2Iterations != 3 {
		t.Errorf("Argon2Iterations = %d, want 3", cfg.Argon2Iterations)
	}
	if cfg.OTPExpiryMinutes != 5 {
		t.Errorf("OTPExpiryMinutes = %d, want 5", cfg.OTPExpiryMinutes)
	}
	if cfg.RateLimitRequests != 100 {
		t.Errorf("RateLimitRequests = %d, want 100", cfg.RateLimitRequests)
	}
	if cfg.EventsKafkaTopic != "servease-events" {
		t.Errorf("EventsKafkaTopic = %q, want default", cfg.EventsKafkaTopic)
	}
	if cfg.OTPReturnToClient {
		t.Error("OTPReturnToClient should default to false")
	}
	if cfg.TrustedProxies != 0 {
		t.Errorf("TrustedProxies = %d, want 0", cfg.TrustedProxies)
	}
	if cfg.OTPVerifyAttempts != 5 {
		t.Errorf("OTPVerifyAttempts = %d, want 5", cfg.OTPVerifyAttempts)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("ARGON2_ITERATIONS", "4")
	os.Setenv("OTP_EXPIRY_MINUTES", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.Argon2Iterations != 4 {
		t.Errorf("Argon2Iterations = %d, want 4", cfg.Argon2Iterations)
	}
	if cfg.OTPTTL() != 10*time.Minute {
		t.Errorf("OTPTTL = %v, want 10m", cfg.OTPTTL())
	}
}

func TestLoad_Argon2Validation(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
		err  bool
	}{
		{"defaults", nil, false},
		{"zero iterations", map[string]string{"ARGON2_ITERATIONS": "0"}, true},
		{"memory too small", map[string]string{"ARGON2_MEMORY_KIB": "1024"}, true},
		{"memory at floor", map[string]string{"ARGON2_MEMORY_KIB": "8192"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tc.env {
				os.Setenv(k, v)
			}
			_, err := Load()
			if tc.err && err == nil {
				t.Fatal("Load should return error")
			}
			if !tc.err && err != nil {
				t.Fatalf("Load: %v", err)
			}
		})
	}
}

func TestLoad_OTPReturnToClientProduction(t *testing.T) {
	os.Clearenv()
	os.Setenv("OTP_RETURN_TO_CLIENT", "true")
	os.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load should return error when OTP_RETURN_TO_CLIENT=true and APP_ENV=production")
	}
	if cfg != nil {
		t.Error("Load should return nil config on error")
	}
	if err.Error() != "config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production" {
		t.Errorf("error = %q, want production message", err.Error())
	}
}

func TestLoad_OTPReturnToClientDevelopment(t *testing.T) {
	os.Clearenv()
	os.Setenv("OTP_RETURN_TO_CLIENT", "true")
	os.Setenv("APP_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.OTPReturnToClient {
		t.Error("OTPReturnToClient should be true")
	}
	if cfg.IsProduction() {
		t.Error("IsProduction should be false")
	}
}

func TestLoad_NegativeRateLimit(t *testing.T) {
	os.Clearenv()
	os.Setenv("RATE_LIMIT_REQUESTS", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject a negative RATE_LIMIT_REQUESTS")
	}
}

func TestLoad_NegativeProxyAndOTPLimits(t *testing.T) {
	for _, key := range []string{"TRUSTED_PROXIES", "OTP_VERIFY_ATTEMPTS"} {
		t.Run(key, func(t *testing.T) {
			os.Clearenv()
			os.Setenv(key, "-1")
			if _, err := Load(); err == nil {
				t.Fatalf("Load should reject a negative %s", key)
			}
		})
	}
}

func TestAccessTTL(t *testing.T) {
	testCases := []struct {
		value string
		want  time.Duration
	}{
		{"30m", 30 * time.Minute},
		{"invalid", 15 * time.Minute},
		{"0", 15 * time.Minute},
		{"-5m", 15 * time.Minute},
	}
	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			cfg := &Config{JWTAccessTTL: tc.value}
			if got := cfg.AccessTTL(); got != tc.want {
				t.Errorf("AccessTTL = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRefreshTTL(t *testing.T) {
	testCases := []struct {
		value string
		want  time.Duration
	}{
		{"336h", 14 * 24 * time.Hour},
		{"invalid", 168 * time.Hour},
		{"0", 168 * time.Hour},
		{"-1h", 168 * time.Hour},
	}
	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			cfg := &Config{JWTRefreshTTL: tc.value}
			if got := cfg.RefreshTTL(); got != tc.want {
				t.Errorf("RefreshTTL = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRateLimitWindowDuration(t *testing.T) {
	if got := (&Config{RateLimitWindow: "30s"}).RateLimitWindowDuration(); got != 30*time.Second {
		t.Errorf("RateLimitWindowDuration = %v, want 30s", got)
	}
	if got := (&Config{RateLimitWindow: "bogus"}).RateLimitWindowDuration(); got != time.Minute {
		t.Errorf("RateLimitWindowDuration = %v, want 1m", got)
	}
}

func TestKafkaBrokersList(t *testing.T) {
	cfg := &Config{KafkaBrokers: " a:9092, ,b:9092 "}
	want := []string{"a:9092", "b:9092"}
	if got := cfg.KafkaBrokersList(); !reflect.DeepEqual(got, want) {
		t.Errorf("KafkaBrokersList = %v, want %v", got, want)
	}
	var nilCfg *Config
	if got := nilCfg.KafkaBrokersList(); got != nil {
		t.Errorf("nil config KafkaBrokersList = %v, want nil", got)
	}
	if got := (&Config{}).KafkaBrokersList(); got != nil {
		t.Errorf("empty KafkaBrokersList = %v, want nil", got)
	}
}

func TestCORSOriginsList(t *testing.T) {
	if got := (&Config{}).CORSOriginsList(); !reflect.DeepEqual(got, []string{"*"}) {
		t.Errorf("CORSOriginsList = %v, want [*]", got)
	}
	cfg := &Config{CORSOrigins: "https://a.example,https://b.example"}
	want := []string{"https://a.example", "https://b.example"}
	if got := cfg.CORSOriginsList(); !reflect.DeepEqual(got, want) {
		t.Errorf("CORSOriginsList = %v, want %v", got, want)
	}
}
