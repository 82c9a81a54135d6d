package eformidling

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/darkkaiser/app-runtime/internal/pkg/fetcher"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
)

// Client eFormidling 통합 지점(Integrasjonspunkt) REST API 클라이언트
type Client struct {
	fetcher fetcher.Fetcher
	baseURL string
}

var _ contract.MessagingClient = (*Client)(nil)

func NewClient(f fetcher.Fetcher, baseURL string) *Client {
	return &Client{fetcher: f, baseURL: strings.TrimRight(baseURL, "/")}
}

// CreateMessage POST /api/messages/out 로 봉투를 등록하고, 통합 지점이 보완한 봉투를 반환합니다.
func (c *Client) CreateMessage(ctx context.Context, sbd *contract.StandardBusinessDocument) (*contract.StandardBusinessDocument, error) {
	if sbd == nil {
		return nil, apperrors.New(apperrors.InvalidInput, "SBD 봉투는 nil일 수 없습니다")
	}

	var confirmed contract.StandardBusinessDocument
	if err := fetcher.DoJSON(ctx, c.fetcher, http.MethodPost, c.baseURL+"/api/messages/out", sbd, &confirmed); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ExternalService, "메시지(%s) 생성에 실패했습니다", sbd.MessageID())
	}
	return &confirmed, nil
}

// UploadAttachment PUT /api/messages/out/{messageId}?title={filename} 로 첨부 파일을 업로드합니다.
func (c *Client) UploadAttachment(ctx context.Context, r io.Reader, messageID, filename string) error {
	if messageID == "" || filename == "" {
		return apperrors.New(apperrors.InvalidInput, "첨부 업로드에는 메시지 ID와 파일 이름이 필요합니다")
	}

	endpoint := c.baseURL + "/api/messages/out/" + url.PathEscape(messageID) + "?title=" + url.QueryEscape(filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, r)
	if err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, "첨부 업로드 요청을 만들 수 없습니다")
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"name":     filename,
		"filename": filename,
	}))

	if err := c.do(req); err != nil {
		return apperrors.Wrapf(err, apperrors.ExternalService, "메시지(%s)에 첨부(%s)를 업로드하지 못했습니다", messageID, filename)
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"message_id": messageID,
		"filename":   filename,
	}).Debug("첨부 업로드 완료")

	return nil
}

// SendMessage POST /api/messages/out/{messageId} 로 메시지 발송을 확정합니다.
func (c *Client) SendMessage(ctx context.Context, messageID string) error {
	if messageID == "" {
		return apperrors.New(apperrors.InvalidInput, "메시지 ID는 비워둘 수 없습니다")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/messages/out/"+url.PathEscape(messageID), nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, "메시지 발송 요청을 만들 수 없습니다")
	}

	if err := c.do(req); err != nil {
		return apperrors.Wrapf(err, apperrors.ExternalService, "메시지(%s) 발송에 실패했습니다", messageID)
	}
	return nil
}

// GetMessageStatusById GET /api/messages/status?messageId={messageId} 로 상태 이력을 조회합니다.
func (c *Client) GetMessageStatusById(ctx context.Context, messageID string) (*contract.Statuses, error) {
	var statuses contract.Statuses
	endpoint := c.baseURL + "/api/messages/status?messageId=" + url.QueryEscape(messageID)
	if err := fetcher.DoJSON(ctx, c.fetcher, http.MethodGet, endpoint, nil, &statuses); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ExternalService, "메시지(%s) 상태 조회에 실패했습니다", messageID)
	}
	return &statuses, nil
}

// GetCapabilities GET /api/capabilities/{orgNumber} 로 수신 기관의 발송 방식 목록을 조회합니다.
func (c *Client) GetCapabilities(ctx context.Context, orgNumber string) (*contract.Capabilities, error) {
	var capabilities contract.Capabilities
	endpoint := c.baseURL + "/api/capabilities/" + url.PathEscape(orgNumber)
	if err := fetcher.DoJSON(ctx, c.fetcher, http.MethodGet, endpoint, nil, &capabilities); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ExternalService, "수신 기관(%s)의 발송 방식 조회에 실패했습니다", orgNumber)
	}
	return &capabilities, nil
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.fetcher.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		resp.Body.Close()
	}()

	return fetcher.CheckResponseStatus(resp)
}
