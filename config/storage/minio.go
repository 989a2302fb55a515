package storage

import (
	"errors"

	storenum "github.com/krau/RelayAny-Bot/pkg/enums/storage"
)

type MinioStorageConfig struct {
	BaseConfig      `mapstructure:"-"`
	Endpoint        string `toml:"endpoint" mapstructure:"endpoint" json:"endpoint"`
	Region          string `toml:"region" mapstructure:"region" json:"region"`
	AccessKeyID     string `toml:"access_key_id" mapstructure:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key" mapstructure:"secret_access_key" json:"secret_access_key"`
	BucketName      string `toml:"bucket_name" mapstructure:"bucket_name" json:"bucket_name"`
	// CreateBucket makes the bucket on start when it is missing.
	CreateBucket bool `toml:"create_bucket" mapstructure:"create_bucket" json:"create_bucket"`
	UseSSL       bool `toml:"use_ssl" mapstructure:"use_ssl" json:"use_ssl"`
	// BasePath is an object key prefix inside the bucket.
	BasePath string `toml:"base_path" mapstructure:"base_path" json:"base_path"`
}

func (m *MinioStorageConfig) Validate() error {
	var errs []error
	if m.Endpoint == "" {
		errs = append(errs, errors.New("endpoint is required for minio storage"))
	}
	if m.AccessKeyID == "" || m.SecretAccessKey == "" {
		errs = append(errs, errors.New("access_key_id and secret_access_key are required for minio storage"))
	}
	if m.BucketName == "" {
		errs = append(errs, errors.New("bucket_name is required for minio storage"))
	}
	return errors.Join(errs...)
}

func (m *MinioStorageConfig) GetType() storenum.StorageType {
	return storenum.Minio
}
