package storage

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/Vovarama1992/voice_pipeline/internal/speech"
	"go.uber.org/zap"
)

// ArchiveStore сохраняет через локальный стор, затем копирует файл в S3.
// Ошибка загрузки только логируется, сохранение не падает.
type ArchiveStore struct {
	local    AudioStore
	uploader ObjectUploader
	prefix   string
	log      *zap.SugaredLogger
}

func NewArchiveStore(local AudioStore, uploader ObjectUploader, prefix string, log *zap.SugaredLogger) *ArchiveStore {
	return &ArchiveStore{local: local, uploader: uploader, prefix: prefix, log: log}
}

func (a *ArchiveStore) Save(ctx context.Context, name string, buf speech.AudioBuffer) (string, error) {
	p, err := a.local.Save(ctx, name, buf)
	if err != nil {
		return "", err
	}

	f, err := os.Open(p)
	if err != nil {
		a.log.Warnw("archive: open failed", "path", p, "error", err)
		return p, nil
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		a.log.Warnw("archive: stat failed", "path", p, "error", err)
		return p, nil
	}

	key := path.Join(a.prefix, filepath.Base(p))
	publicURL, err := a.uploader.PutObject(ctx, key, f, info.Size(), "audio/wav")
	if err != nil {
		a.log.Warnw("archive: upload failed", "key", key, "error", err)
		return p, nil
	}
	a.log.Infow("archived", "url", publicURL)
	return p, nil
}
