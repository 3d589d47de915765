// internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"cloud.google.com/go/storage"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	httpin "tablenote/internal/adapters/in/http"
	"tablenote/internal/adapters/in/http/middleware"
	pgadapter "tablenote/internal/adapters/out/db"
	fsadapter "tablenote/internal/adapters/out/firestore"
	gcsadapter "tablenote/internal/adapters/out/gcs"
	usecase "tablenote/internal/application/usecase"
	appcfg "tablenote/internal/infra/config"
	"tablenote/internal/infra/database"
	fsinfra "tablenote/internal/infra/firestore"
)

// Container is shared runtime infrastructure for DI.
// - owns external clients (Firestore/FirebaseAuth/GCS/SecretManager/Postgres)
// - wires repositories, usecases and router deps
//
// Firestore/GCS are strict (return error): the image staging flow cannot run
// without them. Firebase Auth, Secret Manager and Postgres are best-effort
// (warn + continue); endpoints whose usecases are missing simply do not mount.
type Container struct {
	Config    *appcfg.Config
	ProjectID string

	Firestore     *firestore.Client
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	DB            *database.DB

	deps httpin.RouterDeps
}

// NewContainer initializes external clients and wires the whole graph.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("di: config is nil")
	}

	projectID := resolveProjectID(cfg)
	if projectID == "" {
		return nil, errors.New("di: projectID is empty (set FIRESTORE_PROJECT_ID or GOOGLE_CLOUD_PROJECT)")
	}

	c := &Container{
		Config:    cfg,
		ProjectID: projectID,
	}

	// Credentials file (optional; mainly for local dev)
	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds) // GOOGLE_APPLICATION_CREDENTIALS
	}
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[di] Using credentials file for GCP clients")
	} else {
		log.Printf("[di] Using Application Default Credentials")
	}

	// 1) Optional: Secret Manager client (DB password fallback)
	{
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[di] WARN: secretmanager.NewClient failed: %v (secret fallback disabled)", err)
			sm = nil
		}
		c.SecretManager = sm
	}

	// 2) Firestore (strict)
	{
		fsw, err := fsinfra.NewClient(ctx, c.ProjectID, credFile)
		if err != nil {
			return nil, fmt.Errorf("di: firestore init failed (project=%s): %w", c.ProjectID, err)
		}
		c.Firestore = fsw.Client
	}

	// 3) GCS (strict)
	{
		gcsClient, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			_ = c.Firestore.Close()
			return nil, fmt.Errorf("di: storage.NewClient failed: %w", err)
		}
		c.GCS = gcsClient
		log.Printf("[di] GCS storage client initialized")
	}

	// 4) Firebase App/Auth (best-effort)
	{
		fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: c.ProjectID}, clientOpts...)
		if err != nil {
			log.Printf("[di] WARN: firebase app init failed: %v", err)
		} else {
			c.FirebaseApp = fbApp
			authClient, err := fbApp.Auth(ctx)
			if err != nil {
				log.Printf("[di] WARN: firebase auth init failed: %v", err)
			} else {
				c.FirebaseAuth = authClient
				log.Printf("[di] Firebase Auth initialized")
			}
		}
	}

	// 5) Postgres (best-effort; review commit/read stay unmounted without it)
	{
		password := cfg.DBPassword
		if password == "" && cfg.DBPasswordSecret != "" {
			pw, err := c.accessSecret(ctx, cfg.DBPasswordSecret)
			if err != nil {
				log.Printf("[di] WARN: db password secret fetch failed: %v", err)
			} else {
				password = pw
			}
		}
		db, err := database.NewConnection(cfg.DBHost, cfg.DBPort, cfg.DBUser, password, cfg.DBName)
		if err != nil {
			log.Printf("[di] WARN: db connection failed: %v (review endpoints disabled)", err)
			db = nil
		}
		c.DB = db
	}

	c.wire()
	return c, nil
}

// wire connects repositories, usecases and router deps.
func (c *Container) wire() {
	sessionRepo := fsadapter.NewImageSessionRepositoryFS(c.Firestore)
	imageRepo := gcsadapter.NewReviewImageRepositoryGCS(c.GCS, c.Config.GCSBucket)

	c.deps.ImageSessionUC = usecase.NewImageSessionUsecase(sessionRepo, imageRepo)

	if c.DB != nil {
		restaurantRepo := pgadapter.NewRestaurantRepositoryPG(c.DB.Client)
		reviewRepo := pgadapter.NewReviewRepositoryPG(c.DB.Client)

		c.deps.CreateReviewUC = usecase.NewCreateReviewUsecase(
			restaurantRepo,
			sessionRepo,
			reviewRepo,
			imageRepo,
			c.Config.ReviewMigrationTimeout,
		)
		c.deps.ReviewQueryUC = usecase.NewReviewQueryUsecase(reviewRepo)
	}

	if c.FirebaseAuth != nil {
		c.deps.UserAuth = &middleware.UserAuthMiddleware{FirebaseAuth: c.FirebaseAuth}
	}
}

// RouterDeps returns the wired router dependencies.
func (c *Container) RouterDeps() httpin.RouterDeps {
	return c.deps
}

// accessSecret reads one Secret Manager payload.
// name accepts either a full resource name or a bare secretId
// (projects/{project}/secrets/{secretId}/versions/latest is assumed).
func (c *Container) accessSecret(ctx context.Context, name string) (string, error) {
	if c.SecretManager == nil {
		return "", errors.New("di: secretmanager client is nil")
	}
	n := strings.TrimSpace(name)
	if n == "" {
		return "", errors.New("di: secret name is empty")
	}
	if !strings.HasPrefix(n, "projects/") {
		n = "projects/" + c.ProjectID + "/secrets/" + n + "/versions/latest"
	}
	resp, err := c.SecretManager.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: n})
	if err != nil {
		return "", fmt.Errorf("di: AccessSecretVersion failed (%s): %w", n, err)
	}
	if resp == nil || resp.Payload == nil {
		return "", fmt.Errorf("di: empty secret payload (%s)", n)
	}
	return strings.TrimSpace(string(resp.Payload.Data)), nil
}

// Close は Cloud Run 終了時などに呼んで安全にリソースを閉じる。
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.Firestore != nil {
		_ = c.Firestore.Close()
	}
	if c.GCS != nil {
		_ = c.GCS.Close()
	}
	if c.SecretManager != nil {
		_ = c.SecretManager.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}

func resolveProjectID(cfg *appcfg.Config) string {
	// Priority:
	// 1) cfg.FirestoreProjectID (resolved by config.Load)
	// 2) FIRESTORE_PROJECT_ID
	// 3) GCP_PROJECT_ID
	// 4) GOOGLE_CLOUD_PROJECT (often set in Cloud Run)
	// 5) FIREBASE_PROJECT_ID (fallback)
	if cfg != nil {
		if v := strings.TrimSpace(cfg.FirestoreProjectID); v != "" {
			return v
		}
	}
	for _, k := range []string{
		"FIRESTORE_PROJECT_ID",
		"GCP_PROJECT_ID",
		"GOOGLE_CLOUD_PROJECT",
		"FIREBASE_PROJECT_ID",
	} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
