package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	// RetireTopicName is the pub/sub topic the attachment janitor consumes.
	RetireTopicName string

	// UploadDriver selects the attachment backend: "disk" or "s3".
	UploadDriver     string
	UploadDir        string
	PublicUploadPath string

	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3PublicBaseURL string
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "3000"),
		DatabaseURL: os.Getenv("DB_CONNECTION_STRING"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		RetireTopicName: getEnv("RETIRE_ATTACHMENT_TOPIC_NAME", "attachment.retire"),

		UploadDriver:     getEnv("UPLOAD_DRIVER", "disk"),
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
		PublicUploadPath: getEnv("PUBLIC_UPLOAD_PATH", "/uploads"),

		S3AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("S3_SECRET_KEY"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3Region:        os.Getenv("S3_REGION"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
