package postalcode

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/promoled-directory/internal/geo"
	"github.com/georgemunganga/promoled-directory/internal/logger"
)

type memoryRepo struct {
	idx      geo.Index
	replaces int
	err      error
}

func (m *memoryRepo) Load(ctx context.Context) (geo.Index, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.idx, nil
}

func (m *memoryRepo) Replace(ctx context.Context, idx geo.Index) error {
	if m.err != nil {
		return m.err
	}
	m.idx = idx
	m.replaces++
	return nil
}

var importedAt = time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo *memoryRepo) *service {
	t.Helper()
	svc := NewService(repo, logger.Nop()).(*service)
	svc.now = func() time.Time { return importedAt }
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

const toulouseCSV = `cp;lat;lng
31000;43,6045;1,4442
31150;43.6944;1.4442
`

func TestImportReplacesTable(t *testing.T) {
	repo := &memoryRepo{idx: geo.Index{"75001": {Lat: 48.8566, Lng: 2.3522}}}
	svc := newTestService(t, repo)
	assert.Equal(t, 1, svc.Stats().PostalCodes)
	assert.Nil(t, svc.Stats().ImportedAt)

	res, err := svc.Import(context.Background(), strings.NewReader(toulouseCSV), geo.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{PostalCodes: 2, Format: "csv"}, res)

	_, ok := svc.Index().Lookup("75001")
	assert.False(t, ok, "import does not merge")
	assert.Equal(t, 2, repo.idx.Len())
	assert.Equal(t, Stats{PostalCodes: 2, ImportedAt: &importedAt}, svc.Stats())
}

func TestImportAllMalformedKeepsTable(t *testing.T) {
	repo := &memoryRepo{idx: geo.Index{"75001": {Lat: 48.8566, Lng: 2.3522}}}
	svc := newTestService(t, repo)

	_, err := svc.Import(context.Background(), strings.NewReader("3100;43.6;1.4\nabcde;1;2\n"), geo.FormatCSV)
	assert.ErrorIs(t, err, geo.ErrInvalidImport)
	assert.Equal(t, 1, svc.Index().Len())
	assert.Zero(t, repo.replaces)
}

func TestImportStorageFailureKeepsTable(t *testing.T) {
	repo := &memoryRepo{idx: geo.Index{}}
	svc := newTestService(t, repo)
	repo.err = errors.New("connection reset")

	_, err := svc.Import(context.Background(), strings.NewReader(toulouseCSV), geo.FormatCSV)
	assert.Error(t, err)
	assert.Zero(t, svc.Index().Len())
}

func TestReplaceRejectsEmpty(t *testing.T) {
	svc := newTestService(t, &memoryRepo{idx: geo.Index{}})
	assert.ErrorIs(t, svc.Replace(context.Background(), geo.Index{"1": {}}), geo.ErrInvalidImport)
}

func TestNearby(t *testing.T) {
	svc := newTestService(t, &memoryRepo{idx: geo.Index{}})
	_, err := svc.Import(context.Background(), strings.NewReader(toulouseCSV), geo.FormatCSV)
	require.NoError(t, err)

	found, err := svc.Nearby("31000", 15)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "31150", found[1].Zip)

	_, err = svc.Nearby("69001", 15)
	assert.ErrorIs(t, err, ErrUnknownPostalCode)
}

func TestLoadFailure(t *testing.T) {
	svc := NewService(&memoryRepo{err: errors.New("down")}, logger.Nop())
	assert.Error(t, svc.Load(context.Background()))
}
