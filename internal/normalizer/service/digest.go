package service

import (
	"context"

	"fieldnorm/pkg/digest"
	apperrors "fieldnorm/pkg/errors"
	"fieldnorm/pkg/model"

	"github.com/google/uuid"
)

func (s *normalizerService) Digest(ctx context.Context, req *model.DigestRequest) (*model.DigestResponse, error) {
	if err := s.validate(req, "Digest request validation failed"); err != nil {
		return nil, err
	}
	return &model.DigestResponse{
		Base64: digest.MD5Base64(*req.Text),
		UUID:   digest.MD5UUID(*req.Text).String(),
	}, nil
}

func (s *normalizerService) VerifyDigest(ctx context.Context, req *model.VerifyDigestRequest) (*model.VerifyDigestResponse, error) {
	if err := s.validate(req, "Digest verification request validation failed"); err != nil {
		return nil, err
	}

	valid := true
	if req.Base64 != "" {
		valid = digest.VerifyMD5Base64(*req.Text, req.Base64)
	}
	if req.UUID != "" {
		id, err := uuid.Parse(req.UUID)
		if err != nil {
			return nil, apperrors.InvalidInput("Invalid UUID: " + req.UUID)
		}
		valid = valid && digest.VerifyMD5UUID(*req.Text, id)
	}
	return &model.VerifyDigestResponse{Valid: valid}, nil
}

func (s *normalizerService) NewToken(ctx context.Context) (*model.TokenResponse, error) {
	token, err := digest.RandomBase64()
	if err != nil {
		s.log.Error("Failed to generate token", "error", err)
		return nil, apperrors.Internal("Failed to generate token", err)
	}
	return &model.TokenResponse{Token: token}, nil
}
