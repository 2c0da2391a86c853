package service

import (
	"context"
	"fmt"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
)

// ArchiveExport is a rendered archive ready for download
type ArchiveExport struct {
	Filename    string
	ContentType string
	Data        []byte
	Count       int
}

// ArchiveService exports the actor's sent and archived letters
type ArchiveService interface {
	Export(ctx context.Context, actor entity.Actor) (*ArchiveExport, error)
}

type archiveServiceImpl struct {
	letters LetterService
	writer  port.ArchiveWriter
	logger  Logger
}

// NewArchiveService creates a new ArchiveService
func NewArchiveService(letters LetterService, writer port.ArchiveWriter, logger Logger) ArchiveService {
	return &archiveServiceImpl{letters: letters, writer: writer, logger: logger}
}

func (s *archiveServiceImpl) Export(ctx context.Context, actor entity.Actor) (*ArchiveExport, error) {
	visible, err := s.letters.ListVisible(ctx, actor)
	if err != nil {
		return nil, err
	}
	archived := make([]*entity.Letter, 0, len(visible))
	for _, l := range visible {
		if l.Status == entity.LetterStatusSent || l.Status == entity.LetterStatusArchived {
			archived = append(archived, l)
		}
	}

	data, err := s.writer.WriteLetters(archived)
	if err != nil {
		s.logger.Error("Failed to render archive", "actor_id", actor.ID, "error", err)
		return nil, fmt.Errorf("failed to render archive: %w", err)
	}
	s.logger.Info("Archive exported", "actor_id", actor.ID, "letters", len(archived))
	return &ArchiveExport{
		Filename:    "arsip-surat.xlsx",
		ContentType: s.writer.ContentType(),
		Data:        data,
		Count:       len(archived),
	}, nil
}
