package service

import (
	"crypto/md5"
	"fmt"
	"time"

	"ai-scorestudio/internal/dto"
	"ai-scorestudio/pkg/musicxml"

	"github.com/patrickmn/go-cache"
)

// IScoreService exposes the score utility operations (templates, merge,
// extract, validation, inspection).
type IScoreService interface {
	NewScore(req *dto.NewScoreRequest) (*dto.ScoreResponse, error)
	Merge(req *dto.MergeRequest) (*dto.ScoreResponse, error)
	Extract(req *dto.ExtractRequest) (*dto.ScoreResponse, error)
	Validate(req *dto.ValidateRequest) *dto.ValidateResponse
	Info(xmlString string) (*musicxml.Info, error)
}

type scoreService struct {
	// The UI re-reads score info after every render; parsing the same
	// document repeatedly is wasted work, so results are cached by content.
	infoCache *cache.Cache
}

func NewScoreService() IScoreService {
	return &scoreService{
		infoCache: cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (ss *scoreService) NewScore(req *dto.NewScoreRequest) (*dto.ScoreResponse, error) {
	parts := make([]musicxml.Part, 0, len(req.Instruments))
	for i, inst := range req.Instruments {
		id := inst.ID
		if id == "" {
			id = fmt.Sprintf("P%d", i+1)
		}
		parts = append(parts, musicxml.Part{
			ID:           id,
			Name:         inst.Name,
			Abbreviation: inst.Abbreviation,
			MIDIProgram:  inst.MIDIProgram,
			Clef:         inst.Clef,
		})
	}

	xml, err := musicxml.NewScore(musicxml.TemplateOptions{
		Title:     req.Title,
		Composer:  req.Composer,
		Parts:     parts,
		TimeBeats: req.TimeBeats,
		TimeType:  req.TimeType,
		KeyFifths: req.KeyFifths,
		Tempo:     req.Tempo,
		Measures:  req.Measures,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ScoreResponse{MusicXML: xml}, nil
}

func (ss *scoreService) Merge(req *dto.MergeRequest) (*dto.ScoreResponse, error) {
	merged, err := musicxml.Merge(req.BaseXML, req.NewXML, req.InsertAtMeasure)
	if err != nil {
		return nil, err
	}
	return &dto.ScoreResponse{MusicXML: merged}, nil
}

func (ss *scoreService) Extract(req *dto.ExtractRequest) (*dto.ScoreResponse, error) {
	extracted, err := musicxml.Extract(req.MusicXML, req.StartMeasure, req.EndMeasure)
	if err != nil {
		return nil, err
	}
	return &dto.ScoreResponse{MusicXML: extracted}, nil
}

func (ss *scoreService) Validate(req *dto.ValidateRequest) *dto.ValidateResponse {
	if err := musicxml.Validate(req.MusicXML); err != nil {
		return &dto.ValidateResponse{Valid: false, Error: err.Error()}
	}
	resp := &dto.ValidateResponse{Valid: true}
	if info, err := ss.Info(req.MusicXML); err == nil {
		resp.Info = info
	}
	return resp
}

func (ss *scoreService) Info(xmlString string) (*musicxml.Info, error) {
	key := fmt.Sprintf("%x", md5.Sum([]byte(xmlString)))
	if cached, found := ss.infoCache.Get(key); found {
		return cached.(*musicxml.Info), nil
	}

	info, err := musicxml.ParseInfo(xmlString)
	if err != nil {
		return nil, err
	}
	ss.infoCache.Set(key, info, cache.DefaultExpiration)
	return info, nil
}
