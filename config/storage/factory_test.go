package storage

import (
	"strings"
	"testing"

	storenum "github.com/krau/RelayAny-Bot/pkg/enums/storage"
	"github.com/spf13/viper"
)

func loadTOML(t *testing.T, doc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(doc)); err != nil {
		t.Fatalf("read config: %v", err)
	}
	return v
}

func TestLoadStorageConfigs(t *testing.T) {
	v := loadTOML(t, `
[[storages]]
name = "disk"
type = "local"
enable = true
base_path = "./archive"

[[storages]]
name = "bucket"
type = "minio"
enable = true
users = [42]
endpoint = "127.0.0.1:9000"
access_key_id = "ak"
secret_access_key = "sk"
bucket_name = "relay"

[[storages]]
name = "off"
type = "local"
enable = false
`)
	cfgs, err := LoadStorageConfigs(v)
	if err != nil {
		t.Fatalf("LoadStorageConfigs() error = %v", err)
	}
	if len(cfgs) != 2 {
		t.Fatalf("got %d configs, want 2", len(cfgs))
	}
	local, ok := cfgs[0].(*LocalStorageConfig)
	if !ok {
		t.Fatalf("cfgs[0] is %T, want *LocalStorageConfig", cfgs[0])
	}
	if local.BasePath != "./archive" || local.GetName() != "disk" {
		t.Errorf("local = %+v", local)
	}
	mc, ok := cfgs[1].(*MinioStorageConfig)
	if !ok {
		t.Fatalf("cfgs[1] is %T, want *MinioStorageConfig", cfgs[1])
	}
	if mc.GetType() != storenum.Minio || mc.BucketName != "relay" {
		t.Errorf("minio = %+v", mc)
	}
	if !mc.Accepts(42) || mc.Accepts(7) {
		t.Errorf("Accepts() does not honour users list")
	}
	if !local.Accepts(7) {
		t.Errorf("empty users list should accept everyone")
	}
}

func TestLoadStorageConfigsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown type": `
[[storages]]
name = "x"
type = "ftp"
enable = true
`,
		"missing base path": `
[[storages]]
name = "x"
type = "local"
enable = true
`,
		"missing bucket": `
[[storages]]
name = "x"
type = "minio"
enable = true
endpoint = "e"
access_key_id = "a"
secret_access_key = "s"
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadStorageConfigs(loadTOML(t, doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
