package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectID                    string
	Port                         string
	AllowedOrigins               []string
	StorageBucket                string
	WebAPIKey                    string
	SendgridAPIKey               string
	MailFrom                     string
	ViaCEPBaseURL                string
	SignedURLServiceAccountEmail string
}

func Load() Config {
	// Local development keeps secrets in .env; absence is fine.
	_ = godotenv.Load()

	projectID := getenv("FIREBASE_PROJECT_ID", "")
	if projectID == "" {
		projectID = getenv("GOOGLE_CLOUD_PROJECT", "")
	}

	port := getenv("PORT", "8080")
	origins := getenv("ALLOWED_ORIGINS", "http://localhost:3000")
	storageBucket := getenv("FIREBASE_STORAGE_BUCKET", "")
	if storageBucket == "" && projectID != "" {
		storageBucket = projectID + ".appspot.com"
	}

	allowed := []string{}
	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			allowed = append(allowed, o)
		}
	}

	return Config{
		ProjectID:                    projectID,
		Port:                         port,
		AllowedOrigins:               allowed,
		StorageBucket:                storageBucket,
		WebAPIKey:                    getenv("FIREBASE_WEB_API_KEY", ""),
		SendgridAPIKey:               getenv("SENDGRID_API_KEY", ""),
		MailFrom:                     getenv("MAIL_FROM", "no-reply@nahio.app"),
		ViaCEPBaseURL:                getenv("VIACEP_BASE_URL", "https://viacep.com.br"),
		SignedURLServiceAccountEmail: getenv("SIGNED_URL_SERVICE_ACCOUNT_EMAIL", ""),
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
