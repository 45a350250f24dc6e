package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.  Optional integrations (OpenAI, Kapso WhatsApp) default to
// empty strings so the server can run in dev mode without them.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    SessionTTLDays int    // session lifetime in days
    OTPTTLMin      int    // one-time code lifetime in minutes
    BcryptCost     int    // bcrypt cost for hashing one-time codes

    OpenAIKey     string // OpenAI API key (empty disables real generation)
    OpenAIBaseURL string // override for OpenAI-compatible endpoints (optional)
    OpenAIModel   string // chat model name
    AITimeoutSec  int    // upper bound on a single generation call

    KapsoAPIKey  string // Kapso WhatsApp API key (empty = dev mode, code is logged)
    KapsoPhoneID string // Kapso WhatsApp phone number id
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:            must("APP_ENV"),      // environment (dev/test/prod)
        Port:           must("APP_PORT"),     // port to bind the HTTP server
        DBUser:         must("DB_USER"),      // database user
        DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:         must("DB_HOST"),      // database host
        DBPort:         must("DB_PORT"),      // database port
        DBName:         must("DB_NAME"),      // database name
        SessionTTLDays: intOr("SESSION_TTL_DAYS", 30),
        OTPTTLMin:      intOr("OTP_TTL_MIN", 5),
        BcryptCost:     intOr("BCRYPT_COST", 10),

        OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
        OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
        OpenAIModel:   strOr("OPENAI_MODEL", "gpt-4o-mini"),
        AITimeoutSec:  intOr("AI_TIMEOUT_SEC", 30),

        KapsoAPIKey:  os.Getenv("KAPSO_API_KEY"),
        KapsoPhoneID: os.Getenv("KAPSO_PHONE_NUMBER_ID"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// strOr retrieves an optional string variable, falling back to a default.
func strOr(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// intOr retrieves an optional integer variable, falling back to a default.
// Invalid values are fatal rather than silently ignored.
func intOr(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, v)
    }
    return n
}
