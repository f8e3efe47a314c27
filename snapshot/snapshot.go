package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/roman778roman/massa/hashx"
	"github.com/roman778roman/massa/jsonx"
	"github.com/roman778roman/massa/ledger"
	"github.com/roman778roman/massa/logx"
	"github.com/roman778roman/massa/types"
)

const folder = "./snapshots"
const FileName = "snapshot-latest.json"

var SnapshotDirectory = getSnapshotDirectory()

func getSnapshotDirectory() string {
	os.MkdirAll(folder, 0755)
	return folder
}

func GetSnapshotPath() string {
	return filepath.Join(SnapshotDirectory, FileName)
}

func EnsureSnapshotDirectory() error {
	return os.MkdirAll(SnapshotDirectory, 0755)
}

// SnapshotMeta identifies the finalized state a snapshot captures: the latest
// finalized slot and the credit-ledger hash at that point.
type SnapshotMeta struct {
	Slot       types.Slot `json:"slot"`
	LedgerHash string     `json:"ledger_hash"`
	CreatedAt  int64      `json:"created_at"`
}

// SnapshotBlock is the compact form of one finalized block in a snapshot.
type SnapshotBlock struct {
	BlockID string     `json:"block_id"`
	Slot    types.Slot `json:"slot"`
	Parents []string   `json:"parents"`
}

// SnapshotFile is the on-disk snapshot: the finalized block graph plus the
// serialized deferred-credit ledger.
type SnapshotFile struct {
	Meta        SnapshotMeta    `json:"meta"`
	FinalBlocks []SnapshotBlock `json:"final_blocks"`
	Credits     []byte          `json:"credits"`
}

// BuildSnapshot assembles a snapshot from the finalized graph and the credit
// ledger.
func BuildSnapshot(slot types.Slot, blocks []SnapshotBlock, credits *ledger.DeferredCredits) *SnapshotFile {
	serializer := ledger.NewCreditsSerializer()
	return &SnapshotFile{
		Meta: SnapshotMeta{
			Slot:       slot,
			LedgerHash: credits.Hash().String(),
			CreatedAt:  time.Now().UnixMilli(),
		},
		FinalBlocks: blocks,
		Credits:     serializer.Serialize(credits),
	}
}

// WriteSnapshot writes the snapshot as snapshot-latest.json in dir, removing
// any older snapshot files.
func WriteSnapshot(dir string, file *SnapshotFile) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}

	data, err := jsonx.MarshalIndent(file, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	latestPath := filepath.Join(dir, FileName)
	if err := os.WriteFile(latestPath, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot file: %w", err)
	}

	if err := cleanupOldSnapshots(dir, latestPath); err != nil {
		logx.Error("SNAPSHOT", "Failed to cleanup old snapshots:", err)
	}

	return latestPath, nil
}

// ReadSnapshot loads a snapshot file from disk
func ReadSnapshot(path string) (*SnapshotFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s SnapshotFile
	if err := jsonx.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// RestoreCredits decodes the snapshot's credit ledger and returns it together
// with the ledger hash recorded at snapshot time. The decoded ledger starts
// from the zero digest baseline; the restoring node adopts the recorded hash
// once it has replayed or trusted the snapshot.
func RestoreCredits(file *SnapshotFile, deserializer *ledger.CreditsDeserializer) (*ledger.DeferredCredits, hashx.Hash, error) {
	credits, err := deserializer.Deserialize(file.Credits)
	if err != nil {
		return nil, hashx.Hash{}, fmt.Errorf("decode snapshot credits: %w", err)
	}
	hash, err := hashx.FromString(file.Meta.LedgerHash)
	if err != nil {
		return nil, hashx.Hash{}, fmt.Errorf("decode snapshot ledger hash: %w", err)
	}
	return credits, hash, nil
}

func cleanupOldSnapshots(dir, latestPath string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read snapshot dir: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		filePath := filepath.Join(dir, file.Name())
		if filePath != latestPath {
			if err := os.Remove(filePath); err != nil {
				logx.Error("SNAPSHOT", "Failed to remove old snapshot:", filePath, err)
			}
		}
	}

	return nil
}
