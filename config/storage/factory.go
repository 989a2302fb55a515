package storage

import (
	"fmt"
	"reflect"

	storenum "github.com/krau/RelayAny-Bot/pkg/enums/storage"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type configFactory func(base *BaseConfig) (StorageConfig, error)

var factories = map[storenum.StorageType]configFactory{
	storenum.Local: decodeInto(&LocalStorageConfig{}),
	storenum.Minio: decodeInto(&MinioStorageConfig{}),
}

// decodeInto returns a factory that allocates a fresh value of proto's type,
// copies the base fields and decodes the remaining keys onto it.
func decodeInto(proto StorageConfig) configFactory {
	typ := reflect.TypeOf(proto).Elem()
	return func(base *BaseConfig) (StorageConfig, error) {
		val := reflect.New(typ)
		val.Elem().FieldByName("BaseConfig").Set(reflect.ValueOf(*base))
		out := val.Interface().(StorageConfig)
		if err := mapstructure.Decode(base.RawConfig, out); err != nil {
			return nil, fmt.Errorf("failed to decode %s archive config: %w", base.Type, err)
		}
		return out, nil
	}
}

// LoadStorageConfigs reads the [[storages]] tables. Disabled entries are skipped.
func LoadStorageConfigs(v *viper.Viper) ([]StorageConfig, error) {
	var bases []BaseConfig
	if err := v.UnmarshalKey("storages", &bases); err != nil {
		return nil, fmt.Errorf("failed to unmarshal storage configs: %w", err)
	}

	configs := make([]StorageConfig, 0, len(bases))
	for i := range bases {
		base := bases[i]
		if !base.Enable {
			continue
		}
		if base.Name == "" {
			return nil, fmt.Errorf("storage #%d has no name", i)
		}
		st, err := storenum.ParseStorageType(base.Type)
		if err != nil {
			return nil, fmt.Errorf("invalid storage type %s for %s: %w", base.Type, base.Name, err)
		}
		factory, ok := factories[st]
		if !ok {
			return nil, fmt.Errorf("unsupported storage type: %s", base.Type)
		}
		cfg, err := factory(&base)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage config for %s: %w", base.Name, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid storage config for %s: %w", base.Name, err)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
