package config

// StorageConfig selects where bank-transfer proof images are kept and what
// uploads are accepted. The provider backends share one Proof policy.
type StorageConfig struct {
	Provider string              `yaml:"provider"`
	Proof    *ProofUploadConfig  `yaml:"proof"`
	Local    *LocalStorageConfig `yaml:"local"`
	AWS      *AWSStorageConfig   `yaml:"aws"`
	GCP      *GCPStorageConfig   `yaml:"gcp"`
}

// ProofUploadConfig bounds what a seller may submit as a payment proof.
type ProofUploadConfig struct {
	MaxSizeBytes int64    `yaml:"max_size_bytes"`
	AllowedTypes []string `yaml:"allowed_types"`
}

// Allows reports whether the content type is an accepted proof format. An
// empty allow list accepts anything, for deployments that front uploads with
// their own scanning.
func (p *ProofUploadConfig) Allows(contentType string) bool {
	if len(p.AllowedTypes) == 0 {
		return true
	}
	for _, allowed := range p.AllowedTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

type LocalStorageConfig struct {
	BasePath string `yaml:"base_path"`
	BaseURL  string `yaml:"base_url"`
}

type AWSStorageConfig struct {
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	CDNDomain       string `yaml:"cdn_domain"`
}

type GCPStorageConfig struct {
	ProjectID       string `yaml:"project_id"`
	Bucket          string `yaml:"bucket"`
	CredentialsFile string `yaml:"credentials_file"`
	CDNDomain       string `yaml:"cdn_domain"`
}

func loadStorageConfig() *StorageConfig {
	return &StorageConfig{
		Provider: getEnv("STORAGE_PROVIDER", "local"),
		Proof: &ProofUploadConfig{
			MaxSizeBytes: int64(getEnvAsInt("PROOF_MAX_SIZE_MB", 5)) * 1024 * 1024,
			AllowedTypes: getEnvAsSlice("PROOF_ALLOWED_TYPES",
				[]string{"image/jpeg", "image/png", "image/webp"}),
		},
		Local: &LocalStorageConfig{
			BasePath: getEnv("STORAGE_LOCAL_PATH", "./uploads"),
			BaseURL:  getEnv("STORAGE_LOCAL_URL", "http://localhost:8080/uploads"),
		},
		AWS: &AWSStorageConfig{
			Region:          getEnv("AWS_S3_REGION", "us-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			CDNDomain:       getEnv("AWS_CLOUDFRONT_DOMAIN", ""),
		},
		GCP: &GCPStorageConfig{
			ProjectID:       getEnv("GCP_PROJECT_ID", ""),
			Bucket:          getEnv("GCP_STORAGE_BUCKET", ""),
			CredentialsFile: getEnv("GCP_CREDENTIALS_FILE", ""),
			CDNDomain:       getEnv("GCP_CDN_DOMAIN", ""),
		},
	}
}
