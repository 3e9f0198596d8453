package repo

import "testing"

func TestConnectEmptyDSN(t *testing.T) {
	if _, err := Connect(""); err == nil {
		t.Fatalf("Connect empty dsn: expected error")
	}
}

func TestMigrateNilDB(t *testing.T) {
	if err := Migrate(nil); err == nil {
		t.Fatalf("Migrate nil db: expected error")
	}
}
