package storage

import (
	"fmt"
	"strings"
)

// StorageType
/* ENUM(
local, minio
) */
type StorageType string

const (
	Local StorageType = "local"
	Minio StorageType = "minio"
)

func (s StorageType) String() string {
	return string(s)
}

func ParseStorageType(name string) (StorageType, error) {
	switch st := StorageType(strings.ToLower(name)); st {
	case Local, Minio:
		return st, nil
	}
	return "", fmt.Errorf("%s is not a valid StorageType", name)
}
