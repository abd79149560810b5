package targetdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wallet-forensics/core/internal/forensic"
	"github.com/wallet-forensics/core/internal/vulnclass"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(context.Background(), filepath.Join(dir, "targets.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestImportAndContainsRoundTrip(t *testing.T) {
	store := openTestStore(t)
	var h [20]byte
	copy(h[:], []byte("01234567890123456789"))

	inserted, err := store.Import(context.Background(), []TargetRecord{
		{Hash160: h, VulnClass: vulnclass.MilkSad, Metadata: []byte("note")},
	})
	require.NoError(t, err)
	require.Equal(t, 1, inserted)

	metadata, found, err := store.Contains(h, vulnclass.MilkSad)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("note"), metadata)

	_, found, err = store.Contains(h, vulnclass.TrustWalletMT)
	require.NoError(t, err)
	require.False(t, found)
}

func TestImportIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	var h [20]byte
	copy(h[:], []byte("aaaaaaaaaaaaaaaaaaaa"))

	record := TargetRecord{Hash160: h, VulnClass: vulnclass.Randstorm}
	_, err := store.Import(context.Background(), []TargetRecord{record})
	require.NoError(t, err)

	inserted, err := store.Import(context.Background(), []TargetRecord{record})
	require.NoError(t, err)
	require.Equal(t, 0, inserted)
}

func TestQueryByClassReturnsOnlyMatchingClass(t *testing.T) {
	store := openTestStore(t)
	var h1, h2 [20]byte
	copy(h1[:], []byte("bbbbbbbbbbbbbbbbbbbb"))
	copy(h2[:], []byte("cccccccccccccccccccc"))

	_, err := store.Import(context.Background(), []TargetRecord{
		{Hash160: h1, VulnClass: vulnclass.MilkSad},
		{Hash160: h2, VulnClass: vulnclass.CakeWallet},
	})
	require.NoError(t, err)

	rows, err := store.QueryByClass(context.Background(), vulnclass.MilkSad, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, h1, rows[0].Hash160)
}

func TestQueryByClassHonorsLimit(t *testing.T) {
	store := openTestStore(t)
	records := make([]TargetRecord, 5)
	for i := range records {
		records[i].VulnClass = vulnclass.Brainwallet
		records[i].Hash160[0] = byte(i + 1)
	}
	_, err := store.Import(context.Background(), records)
	require.NoError(t, err)

	rows, err := store.QueryByClass(context.Background(), vulnclass.Brainwallet, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestBuildBloomRejectsKnownMissesAcceptsKnownHits(t *testing.T) {
	store := openTestStore(t)
	var h [20]byte
	copy(h[:], []byte("dddddddddddddddddddd"))

	_, err := store.Import(context.Background(), []TargetRecord{{Hash160: h, VulnClass: vulnclass.MilkSad}})
	require.NoError(t, err)

	bloom, err := BuildBloom(context.Background(), store, vulnclass.MilkSad, 0)
	require.NoError(t, err)
	require.True(t, bloom.MightContain(h))

	var miss [20]byte
	copy(miss[:], []byte("zzzzzzzzzzzzzzzzzzzz"))
	require.False(t, bloom.MightContain(miss))
}

func TestImportRecoveredKeysIsIdempotentByHash160(t *testing.T) {
	store := openTestStore(t)
	var hash160 [20]byte
	copy(hash160[:], []byte("ffffffffffffffffffff")[:20])
	results := []forensic.RecoveryResult{
		{Address: "1TestAddress", PrivateKey: [32]byte{1, 2, 3}, Hash160: hash160},
	}

	n1, err := store.ImportRecoveredKeys(context.Background(), results)
	require.NoError(t, err)
	require.Equal(t, 1, n1)

	n2, err := store.ImportRecoveredKeys(context.Background(), results)
	require.NoError(t, err)
	require.Equal(t, 0, n2)

	_, found, err := store.Contains(hash160, vulnclass.NonceReuseECDSA)
	require.NoError(t, err)
	require.True(t, found)
}

func TestOpenRejectsCorruptDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.sqlite")
	require.NoError(t, os.WriteFile(path, []byte("this is not a sqlite database file"), 0o600))

	_, err := Open(context.Background(), path)
	require.Error(t, err)
}
