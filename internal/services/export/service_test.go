package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dga_gateway/internal/models"
	"dga_gateway/internal/ports"
	"dga_gateway/internal/repository/citizens"
)

type memUploader struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (u *memUploader) Upload(_ context.Context, key string, r io.Reader, size int64, contentType string) (ports.Meta, error) {
	if u.err != nil {
		return ports.Meta{}, u.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return ports.Meta{}, err
	}
	u.key, u.contentType, u.body = key, contentType, b
	return ports.Meta{Source: "s3", Bucket: "exports", Key: key, Size: size, ContentType: contentType}, nil
}

func seeded(t *testing.T, n int) *citizens.MemoryStore {
	t.Helper()
	s := citizens.NewMemoryStore()
	for i := range n {
		_, err := s.Upsert(context.Background(), models.CitizenRecord{
			UserID:    "U" + string(rune('a'+i)),
			CitizenID: "110000000000" + string(rune('0'+i)),
			Firstname: "Somchai",
			Lastname:  "Srisuk",
		})
		require.NoError(t, err)
	}
	return s
}

func TestExportUploadsWorkbook(t *testing.T) {
	up := &memUploader{}
	svc := NewService(seeded(t, 3), up)
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }

	res, err := svc.Export(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Rows)
	assert.True(t, strings.HasPrefix(up.key, "exports/citizens-1700000000-"), up.key)
	assert.True(t, strings.HasSuffix(up.key, ".xlsx"))
	assert.Equal(t, "s3://exports/"+up.key, res.Path)
	assert.Equal(t, XLSXContentType, up.contentType)

	f, err := excelize.OpenReader(bytes.NewReader(up.body))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "Somchai", rows[1][2])
	assert.NotEmpty(t, rows[1][7])
}

func TestExportRespectsLimit(t *testing.T) {
	up := &memUploader{}
	res, err := NewService(seeded(t, 5), up).Export(context.Background(), Request{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
}

func TestExportUploadError(t *testing.T) {
	up := &memUploader{err: errors.New("bucket gone")}
	_, err := NewService(seeded(t, 1), up).Export(context.Background(), Request{})
	require.Error(t, err)
}

func TestExportNotConfigured(t *testing.T) {
	_, err := NewService(citizens.NewMemoryStore(), nil).Export(context.Background(), Request{})
	require.Error(t, err)
}

func TestRenderEmpty(t *testing.T) {
	buf, err := Render(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{Header}, rows)
}
