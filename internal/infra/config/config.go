// internal/infra/config/config.go
package config

import (
	"os"
	"time"
)

// Config はアプリケーション全体の環境変数設定を保持します。
type Config struct {
	GCSBucket                string
	GCPCreds                 string
	Port                     string
	FirestoreProjectID       string
	FirestoreCredentialsFile string

	// Firebase Auth 用のプロジェクトID
	FirebaseProjectID string

	// PostgreSQL
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	// DB_PASSWORD が空のとき Secret Manager から引くためのリソース名
	// 例) projects/{project}/secrets/db-password/versions/latest
	DBPasswordSecret string

	// 画像移行フェーズ全体のタイムアウト
	ReviewMigrationTimeout time.Duration

	AllowedOrigin string
}

// Load は環境変数を読み込み Config を返します。
func Load() *Config {
	// ベースとなる GCP プロジェクト ID
	defaultProject := getenvDefault("GCP_PROJECT_ID", "tablenote-production")

	cfg := &Config{
		GCSBucket:                os.Getenv("GCS_BUCKET"),
		GCPCreds:                 os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		Port:                     getenvDefault("PORT", "8080"),
		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),

		// FIREBASE_PROJECT_ID が未指定なら GCP のデフォルトを使う
		FirebaseProjectID: getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		DBHost:           getenvDefault("DB_HOST", "localhost"),
		DBPort:           getenvDefault("DB_PORT", "5432"),
		DBUser:           getenvDefault("DB_USER", "tablenote"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           getenvDefault("DB_NAME", "tablenote"),
		DBPasswordSecret: os.Getenv("DB_PASSWORD_SECRET"),

		ReviewMigrationTimeout: getenvDuration("REVIEW_MIGRATION_TIMEOUT", 0),

		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
	}

	return cfg
}

// GetFirestoreProjectID は Firestore/GCP プロジェクト ID を返します。
func (c *Config) GetFirestoreProjectID() string {
	return c.FirestoreProjectID
}

// Firebase 用の ProjectID を返すヘルパー
func (c *Config) GetFirebaseProjectID() string {
	return c.FirebaseProjectID
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvDuration は "60s" / "2m" 形式を読む。未設定・不正なら def。
func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
