// Package keyvault encrypts the relayer signing key material at rest.
// Shares never touch the database unencrypted; the Provider in use decides
// where the wrapping key lives (process memory, AWS KMS or Vault Transit).
package keyvault

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	vault "github.com/hashicorp/vault/api"
	"golang.org/x/crypto/hkdf"

	"github.com/quorum-wallet/quorum-wallet/internal/config"
)

// Provider wraps and unwraps secret material.
type Provider interface {
	// Encrypt encrypts data
	Encrypt(ctx context.Context, data []byte) ([]byte, error)

	// Decrypt decrypts data previously produced by Encrypt
	Decrypt(ctx context.Context, encryptedData []byte) ([]byte, error)

	// Name returns the provider name (e.g., "local", "aws-kms", "vault")
	Name() string
}

// Provider names
const (
	ProviderLocal  = "local"
	ProviderAWSKMS = "aws-kms"
	ProviderVault  = "vault"
)

// New creates a Provider from the service configuration.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.KeyVaultProvider {
	case ProviderLocal, "":
		return NewLocalProvider(cfg.LocalMasterKey)
	case ProviderAWSKMS:
		return NewAWSKMSProvider(cfg.KMSKeyID)
	case ProviderVault:
		return NewVaultProvider(cfg.VaultAddress, cfg.VaultToken, cfg.VaultTransitKey)
	default:
		return nil, fmt.Errorf("unsupported keyvault provider: %s (supported: %s, %s, %s)",
			cfg.KeyVaultProvider, ProviderLocal, ProviderAWSKMS, ProviderVault)
	}
}

// LocalProvider implements Provider using an in-process master key with
// AES-GCM. Suitable for development or simple self-hosted deployments.
type LocalProvider struct {
	encryptionKey []byte
}

// NewLocalProvider creates a local provider from a hex-encoded 32-byte key.
// The AEAD key is derived from the master key with HKDF so the configured
// secret is never used directly as cipher material.
func NewLocalProvider(masterKeyHex string) (*LocalProvider, error) {
	if masterKeyHex == "" {
		return nil, fmt.Errorf("master key is required for local keyvault provider")
	}

	masterKey, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("master key is not valid hex: %w", err)
	}
	if len(masterKey) != 32 {
		return nil, fmt.Errorf("master key must be 32 bytes, got %d", len(masterKey))
	}

	encryptionKey := make([]byte, 32)
	kdf := hkdf.New(sha256.New, masterKey, nil, []byte("quorum-wallet/keyvault/share-encryption"))
	if _, err := io.ReadFull(kdf, encryptionKey); err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}

	return &LocalProvider{encryptionKey: encryptionKey}, nil
}

// Encrypt encrypts data using AES-GCM with the local master key
func (p *LocalProvider) Encrypt(ctx context.Context, data []byte) ([]byte, error) {
	gcm, err := p.aead()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, data, nil), nil
}

// Decrypt decrypts data using AES-GCM with the local master key
func (p *LocalProvider) Decrypt(ctx context.Context, encryptedData []byte) ([]byte, error) {
	gcm, err := p.aead()
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(encryptedData) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := encryptedData[:nonceSize], encryptedData[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}

	return plaintext, nil
}

func (p *LocalProvider) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(p.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Name returns the provider name
func (p *LocalProvider) Name() string {
	return ProviderLocal
}

// AWSKMSProvider implements Provider using AWS KMS
type AWSKMSProvider struct {
	keyID  string
	client *kms.Client
}

// NewAWSKMSProvider creates a new AWS KMS provider. Region and credentials
// come from the default chain: env vars, shared config, IAM role.
func NewAWSKMSProvider(keyID string) (*AWSKMSProvider, error) {
	if keyID == "" {
		return nil, fmt.Errorf("AWS KMS key ID is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSKMSProvider{
		keyID:  keyID,
		client: kms.NewFromConfig(cfg),
	}, nil
}

// Encrypt encrypts data using AWS KMS
func (p *AWSKMSProvider) Encrypt(ctx context.Context, data []byte) ([]byte, error) {
	output, err := p.client.Encrypt(ctx, &kms.EncryptInput{
		KeyId:     aws.String(p.keyID),
		Plaintext: data,
	})
	if err != nil {
		return nil, fmt.Errorf("AWS KMS encrypt failed: %w", err)
	}
	return output.CiphertextBlob, nil
}

// Decrypt decrypts data using AWS KMS
func (p *AWSKMSProvider) Decrypt(ctx context.Context, encryptedData []byte) ([]byte, error) {
	output, err := p.client.Decrypt(ctx, &kms.DecryptInput{
		KeyId:          aws.String(p.keyID),
		CiphertextBlob: encryptedData,
	})
	if err != nil {
		return nil, fmt.Errorf("AWS KMS decrypt failed: %w", err)
	}
	return output.Plaintext, nil
}

// Name returns the provider name
func (p *AWSKMSProvider) Name() string {
	return ProviderAWSKMS
}

// VaultProvider implements Provider using HashiCorp Vault Transit engine
type VaultProvider struct {
	transitKey string
	client     *vault.Client
}

// NewVaultProvider creates a new Vault provider
func NewVaultProvider(address, token, transitKey string) (*VaultProvider, error) {
	if address == "" {
		return nil, fmt.Errorf("Vault address is required")
	}
	if token == "" {
		return nil, fmt.Errorf("Vault token is required")
	}
	if transitKey == "" {
		return nil, fmt.Errorf("Vault transit key name is required")
	}

	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	client.SetToken(token)

	return &VaultProvider{
		transitKey: transitKey,
		client:     client,
	}, nil
}

// Encrypt encrypts data using Vault Transit engine
func (p *VaultProvider) Encrypt(ctx context.Context, data []byte) ([]byte, error) {
	// Vault Transit requires base64-encoded plaintext
	plaintext := base64.StdEncoding.EncodeToString(data)

	path := fmt.Sprintf("transit/encrypt/%s", p.transitKey)
	secret, err := p.client.Logical().WriteWithContext(ctx, path, map[string]interface{}{
		"plaintext": plaintext,
	})
	if err != nil {
		return nil, fmt.Errorf("Vault Transit encrypt failed: %w", err)
	}

	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("Vault Transit encrypt returned empty response")
	}

	ciphertext, ok := secret.Data["ciphertext"].(string)
	if !ok {
		return nil, fmt.Errorf("Vault Transit encrypt: ciphertext not found in response")
	}

	// The ciphertext is a vault:v1:... string
	return []byte(ciphertext), nil
}

// Decrypt decrypts data using Vault Transit engine
func (p *VaultProvider) Decrypt(ctx context.Context, encryptedData []byte) ([]byte, error) {
	path := fmt.Sprintf("transit/decrypt/%s", p.transitKey)
	secret, err := p.client.Logical().WriteWithContext(ctx, path, map[string]interface{}{
		"ciphertext": string(encryptedData),
	})
	if err != nil {
		return nil, fmt.Errorf("Vault Transit decrypt failed: %w", err)
	}

	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("Vault Transit decrypt returned empty response")
	}

	plaintextB64, ok := secret.Data["plaintext"].(string)
	if !ok {
		return nil, fmt.Errorf("Vault Transit decrypt: plaintext not found in response")
	}

	plaintext, err := base64.StdEncoding.DecodeString(plaintextB64)
	if err != nil {
		return nil, fmt.Errorf("Vault Transit decrypt: failed to decode plaintext: %w", err)
	}

	return plaintext, nil
}

// Name returns the provider name
func (p *VaultProvider) Name() string {
	return ProviderVault
}

// Ensure implementations satisfy Provider
var (
	_ Provider = (*LocalProvider)(nil)
	_ Provider = (*AWSKMSProvider)(nil)
	_ Provider = (*VaultProvider)(nil)
)
