// Package platform PDF 생성기, 프로필, 레지스터 플랫폼 서비스에 대한 HTTP 클라이언트를 제공합니다.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/darkkaiser/app-runtime/internal/pkg/fetcher"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
)

const component = "platform"

// PDFClient PDF 생성 서비스 클라이언트
type PDFClient struct {
	fetcher fetcher.Fetcher
	baseURL string
}

var _ contract.Renderer = (*PDFClient)(nil)

func NewPDFClient(f fetcher.Fetcher, baseURL string) *PDFClient {
	return &PDFClient{fetcher: f, baseURL: strings.TrimRight(baseURL, "/")}
}

// GeneratePDF PDFContext를 POST {base}/generate 로 보내고 PDF 응답 본문을 그대로 반환합니다.
func (c *PDFClient) GeneratePDF(ctx context.Context, pdfContext *contract.PDFContext) (io.ReadCloser, error) {
	payload, err := json.Marshal(pdfContext)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "PDF 생성 요청 본문을 JSON으로 인코딩하지 못했습니다")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "PDF 생성 요청을 만들 수 없습니다")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.fetcher.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ExternalService, "PDF 생성 서비스 호출에 실패했습니다")
	}
	if err := fetcher.CheckResponseStatus(resp); err != nil {
		resp.Body.Close()
		return nil, apperrors.Wrap(err, apperrors.ExternalService, "PDF 생성 서비스가 오류를 반환했습니다")
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"instance_id":    instanceID(pdfContext),
		"content_length": resp.ContentLength,
	}).Debug("PDF 생성 응답 수신")

	return resp.Body, nil
}

func instanceID(pdfContext *contract.PDFContext) string {
	if pdfContext == nil || pdfContext.Instance == nil {
		return ""
	}
	return pdfContext.Instance.ID
}

// ProfileClient 사용자 프로필 서비스 클라이언트
type ProfileClient struct {
	fetcher fetcher.Fetcher
	baseURL string
}

var _ contract.ProfileLookup = (*ProfileClient)(nil)

func NewProfileClient(f fetcher.Fetcher, baseURL string) *ProfileClient {
	return &ProfileClient{fetcher: f, baseURL: strings.TrimRight(baseURL, "/")}
}

// GetUserProfile GET {base}/users/{userID}
func (c *ProfileClient) GetUserProfile(ctx context.Context, userID int) (*contract.UserProfile, error) {
	var profile contract.UserProfile
	if err := fetcher.DoJSON(ctx, c.fetcher, http.MethodGet, c.baseURL+"/users/"+url.PathEscape(strconv.Itoa(userID)), nil, &profile); err != nil {
		if apperrors.Is(err, apperrors.NotFound) {
			return nil, apperrors.Wrapf(err, apperrors.NotFound, "사용자 프로필을 찾을 수 없습니다: %d", userID)
		}
		return nil, apperrors.Wrapf(err, apperrors.ExternalService, "사용자 프로필 조회에 실패했습니다: %d", userID)
	}
	return &profile, nil
}

// RegisterClient 당사자 레지스터 서비스 클라이언트
type RegisterClient struct {
	fetcher fetcher.Fetcher
	baseURL string
}

var _ contract.PartyLookup = (*RegisterClient)(nil)

func NewRegisterClient(f fetcher.Fetcher, baseURL string) *RegisterClient {
	return &RegisterClient{fetcher: f, baseURL: strings.TrimRight(baseURL, "/")}
}

// GetParty GET {base}/parties/{partyID}
func (c *RegisterClient) GetParty(ctx context.Context, partyID int) (*contract.Party, error) {
	var party contract.Party
	if err := fetcher.DoJSON(ctx, c.fetcher, http.MethodGet, c.baseURL+"/parties/"+url.PathEscape(strconv.Itoa(partyID)), nil, &party); err != nil {
		if apperrors.Is(err, apperrors.NotFound) {
			return nil, apperrors.Wrapf(err, apperrors.NotFound, "당사자를 찾을 수 없습니다: %d", partyID)
		}
		return nil, apperrors.Wrapf(err, apperrors.ExternalService, "당사자 조회에 실패했습니다: %d", partyID)
	}
	return &party, nil
}
