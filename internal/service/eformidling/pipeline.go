// Package eformidling 완료된 인스턴스를 eFormidling 통합 지점으로 발송하고 발송 상태를 추적합니다.
package eformidling

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/darkkaiser/app-runtime/internal/config"
	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
)

const component = "eformidling"

const (
	// minManifestLength 이 길이 이하의 매니페스트는 비어있는 것으로 봅니다.
	minManifestLength = 3

	headerVersion        = "1.0"
	conversationScope    = "ConversationId"
	defaultSecurityLevel = 3
)

// Dependencies Pipeline이 사용하는 협력자 목록입니다. Manifest, Alerts가 nil이면 해당 단계를 건너뜁니다.
type Dependencies struct {
	Metadata *contract.ApplicationMetadata
	Client   contract.MessagingClient
	Storage  contract.Storage
	Manifest contract.ManifestProvider
	Tracker  *StatusTracker
	Alerts   contract.AlertSender
}

// Pipeline 인스턴스 한 건을 SBD 봉투 생성, 첨부 업로드, 매니페스트 업로드, 발송 확정, 상태 조회 순서로 발송합니다.
type Pipeline struct {
	cfg config.EFormidlingConfig

	metadata *contract.ApplicationMetadata
	client   contract.MessagingClient
	storage  contract.Storage
	manifest contract.ManifestProvider
	tracker  *StatusTracker
	alerts   contract.AlertSender

	now func() time.Time
}

var (
	_ contract.Dispatcher = (*Pipeline)(nil)
	_ contract.Preloader  = (*Pipeline)(nil)
)

func NewPipeline(cfg config.EFormidlingConfig, deps Dependencies) (*Pipeline, error) {
	if deps.Metadata == nil || deps.Client == nil || deps.Storage == nil {
		return nil, apperrors.New(apperrors.Internal, "eFormidling 발송에는 메타데이터, 메시징 클라이언트, 스토리지가 필요합니다")
	}

	tracker := deps.Tracker
	if tracker == nil {
		tracker = NewStatusTracker()
	}

	return &Pipeline{
		cfg: cfg,

		metadata: deps.Metadata,
		client:   deps.Client,
		storage:  deps.Storage,
		manifest: deps.Manifest,
		tracker:  tracker,
		alerts:   deps.Alerts,

		now: time.Now,
	}, nil
}

// Tracker 발송 상태 추적기
func (p *Pipeline) Tracker() *StatusTracker {
	return p.tracker
}

// Dispatch 인스턴스를 발송합니다. 실패하면 운영자 알림을 보낸 뒤 에러를 반환합니다.
func (p *Pipeline) Dispatch(ctx context.Context, instance *contract.Instance, taskID string) error {
	return p.dispatch(ctx, instance, taskID, p.storageUploader(instance))
}

// Preload 첨부 대상 데이터 요소를 모두 메모리로 읽어 두고, 스토리지를 다시 읽지 않고 발송하는 Dispatcher를 반환합니다.
// 발송 직전에 인스턴스가 삭제되는 경우에 사용합니다.
func (p *Pipeline) Preload(ctx context.Context, instance *contract.Instance) (contract.Dispatcher, error) {
	if instance == nil {
		return nil, contract.ErrInstanceRequired
	}

	elements := p.attachmentElements(instance)
	attachments := make([]attachment, 0, len(elements))
	for _, element := range elements {
		content, err := p.readElement(ctx, instance, element)
		if err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"instance_id": instance.ID,
				"element_id":  element.ID,
			}).WithError(err).Error("eFormidling 첨부 사전 로드 실패")

			p.alert(ctx, fmt.Sprintf("eFormidling 첨부 사전 로드 실패\n인스턴스: %s\n데이터 요소: %s\n원인: %v", instance.ID, element.ID, err))
			return nil, err
		}
		attachments = append(attachments, attachment{filename: element.Filename, content: content})
	}

	return &preloadedDispatcher{pipeline: p, attachments: attachments}, nil
}

func (p *Pipeline) dispatch(ctx context.Context, instance *contract.Instance, taskID string, upload uploader) error {
	statuses, err := p.send(ctx, instance, upload)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"instance_id": instanceID(instance),
			"task_id":     taskID,
		}).WithError(err).Error("eFormidling 발송 실패")

		p.alert(ctx, fmt.Sprintf("eFormidling 발송 실패\n인스턴스: %s\n태스크: %s\n원인: %v", instanceID(instance), taskID, err))
		return err
	}

	latest, _ := statuses.Latest()
	applog.WithComponentAndFields(component, applog.Fields{
		"instance_id": instance.ID,
		"task_id":     taskID,
		"status":      latest.Status,
	}).Info("eFormidling 발송 완료")

	return nil
}

// Send 발송 단계를 순서대로 실행하고 발송 직후의 상태 이력을 반환합니다. 한 단계라도 실패하면 나머지 단계는 실행하지 않습니다.
func (p *Pipeline) Send(ctx context.Context, instance *contract.Instance) (*contract.Statuses, error) {
	return p.send(ctx, instance, p.storageUploader(instance))
}

func (p *Pipeline) send(ctx context.Context, instance *contract.Instance, upload uploader) (*contract.Statuses, error) {
	if instance == nil {
		return nil, contract.ErrInstanceRequired
	}

	key, err := instance.Key()
	if err != nil {
		return nil, err
	}
	instanceGUID := key.GUID.String()

	receiver, serviceID, process := p.routing()
	if receiver == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "eFormidling 수신 기관(receiver)이 설정되지 않았습니다")
	}

	if p.cfg.VerifyCapabilities {
		if err := p.verifyCapabilities(ctx, receiver, serviceID); err != nil {
			return nil, err
		}
	}

	sbd := p.buildSBD(instanceGUID, receiver, process)
	confirmed, err := p.client.CreateMessage(ctx, sbd)
	if err != nil {
		return nil, err
	}
	messageID := confirmed.MessageID()
	if messageID == "" {
		messageID = instanceGUID
	}

	if err := upload(ctx, messageID); err != nil {
		return nil, err
	}
	if err := p.uploadManifest(ctx, instance, messageID); err != nil {
		return nil, err
	}

	if err := p.client.SendMessage(ctx, messageID); err != nil {
		return nil, err
	}

	statuses, err := p.client.GetMessageStatusById(ctx, messageID)
	if err != nil {
		return nil, err
	}

	status := contract.MessageStatusSent
	if latest, ok := statuses.Latest(); ok {
		status = latest.Status
	}
	p.tracker.Track(messageID, instance.ID, status)

	return statuses, nil
}

// routing 수신 기관, 서비스 식별자, 프로세스를 결정합니다. 애플리케이션 계약 값이 설정 값보다 우선합니다.
func (p *Pipeline) routing() (receiver, serviceID, process string) {
	receiver, serviceID, process = p.cfg.Receiver, p.cfg.ServiceIdentifier, p.cfg.Process

	if c := p.metadata.EFormidling; c != nil {
		if c.Receiver != "" {
			receiver = c.Receiver
		}
		if c.ServiceID != "" {
			serviceID = c.ServiceID
		}
		if c.Process != "" {
			process = c.Process
		}
	}
	return receiver, serviceID, process
}

func (p *Pipeline) verifyCapabilities(ctx context.Context, receiver, serviceID string) error {
	capabilities, err := p.client.GetCapabilities(ctx, receiver)
	if err != nil {
		return err
	}
	if !capabilities.Supports(serviceID, p.cfg.DocumentType) {
		return apperrors.Newf(apperrors.ExternalService, "수신 기관(%s)이 %s 방식의 '%s' 문서를 지원하지 않습니다", receiver, serviceID, p.cfg.DocumentType)
	}
	return nil
}

func (p *Pipeline) buildSBD(instanceGUID, receiver, process string) *contract.StandardBusinessDocument {
	created := p.now().UTC().Truncate(time.Second)

	sbd := &contract.StandardBusinessDocument{
		Header: contract.StandardBusinessDocumentHeader{
			HeaderVersion: headerVersion,
			Sender:        []contract.Partner{partner(p.cfg.SenderOrgNumber)},
			Receiver:      []contract.Partner{partner(receiver)},
			DocumentIdentification: contract.DocumentIdentification{
				Standard:            p.cfg.DocumentStandard,
				TypeVersion:         p.cfg.TypeVersion,
				InstanceIdentifier:  instanceGUID,
				Type:                p.cfg.DocumentType,
				CreationDateAndTime: created,
			},
			BusinessScope: contract.BusinessScope{
				Scope: []contract.Scope{{
					Type:               conversationScope,
					InstanceIdentifier: instanceGUID,
					Identifier:         process,
					ScopeInformation: []contract.ScopeInformation{{
						ExpectedResponseDateTime: created.Add(p.cfg.ResponseWindow),
					}},
				}},
			},
		},
	}

	if p.cfg.DocumentType == config.DefaultEFormidlingDocumentType {
		sbd.Arkivmelding = &contract.Arkivmelding{
			Sikkerhetsnivaa: defaultSecurityLevel,
			Hoveddokument:   p.cfg.ManifestFile,
		}
	}

	return sbd
}

func partner(orgNumber string) contract.Partner {
	return contract.Partner{
		Identifier: contract.PartnerIdentification{
			Authority: contract.SenderAuthority,
			Value:     "0192:" + orgNumber,
		},
	}
}

// uploader 메시지에 데이터 요소 첨부를 올리는 단계입니다.
type uploader func(ctx context.Context, messageID string) error

// attachment 미리 읽어 둔 첨부 파일
type attachment struct {
	filename string
	content  []byte
}

// preloadedDispatcher Preload 시점에 읽어 둔 첨부로 발송합니다.
type preloadedDispatcher struct {
	pipeline    *Pipeline
	attachments []attachment
}

func (d *preloadedDispatcher) Dispatch(ctx context.Context, instance *contract.Instance, taskID string) error {
	return d.pipeline.dispatch(ctx, instance, taskID, func(ctx context.Context, messageID string) error {
		for _, a := range d.attachments {
			if err := d.pipeline.client.UploadAttachment(ctx, bytes.NewReader(a.content), messageID, a.filename); err != nil {
				return err
			}
		}
		return nil
	})
}

// storageUploader 첨부 대상 데이터 요소를 스토리지에서 순서대로 읽어 업로드합니다.
func (p *Pipeline) storageUploader(instance *contract.Instance) uploader {
	return func(ctx context.Context, messageID string) error {
		for _, element := range p.attachmentElements(instance) {
			if err := p.uploadElement(ctx, instance, element, messageID); err != nil {
				return err
			}
		}
		return nil
	}
}

// attachmentElements 파일 이름이 있는 데이터 요소를 첨부 대상으로 고릅니다.
// 계약에 데이터 타입 목록이 있으면 해당 타입만 고릅니다.
func (p *Pipeline) attachmentElements(instance *contract.Instance) []*contract.DataElement {
	if instance == nil {
		return nil
	}
	allowed := p.allowedDataTypes()

	var elements []*contract.DataElement
	for _, element := range instance.Data {
		if element == nil || element.Filename == "" {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[element.DataType]; !ok {
				continue
			}
		}
		elements = append(elements, element)
	}
	return elements
}

func (p *Pipeline) uploadElement(ctx context.Context, instance *contract.Instance, element *contract.DataElement, messageID string) error {
	stream, err := p.openElement(ctx, instance, element)
	if err != nil {
		return err
	}
	defer stream.Close()

	return p.client.UploadAttachment(ctx, stream, messageID, element.Filename)
}

func (p *Pipeline) readElement(ctx context.Context, instance *contract.Instance, element *contract.DataElement) ([]byte, error) {
	stream, err := p.openElement(ctx, instance, element)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	content, err := io.ReadAll(stream)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ExternalService, "첨부할 데이터 요소(%s)를 끝까지 읽지 못했습니다", element.ID)
	}
	return content, nil
}

func (p *Pipeline) openElement(ctx context.Context, instance *contract.Instance, element *contract.DataElement) (io.ReadCloser, error) {
	stream, err := p.storage.GetBinaryData(ctx, instance, element.ID)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ExternalService, "첨부할 데이터 요소(%s)를 읽지 못했습니다", element.ID)
	}
	return stream, nil
}

func (p *Pipeline) allowedDataTypes() map[string]struct{} {
	c := p.metadata.EFormidling
	if c == nil || len(c.DataTypes) == 0 {
		return nil
	}

	allowed := make(map[string]struct{}, len(c.DataTypes))
	for _, dt := range c.DataTypes {
		allowed[dt] = struct{}{}
	}
	return allowed
}

func (p *Pipeline) uploadManifest(ctx context.Context, instance *contract.Instance, messageID string) error {
	if p.manifest == nil {
		return nil
	}

	content, err := p.manifest.GetManifest(ctx, instance)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ExternalService, "아카이브 매니페스트를 준비하지 못했습니다")
	}
	if len(content) <= minManifestLength {
		return nil
	}

	return p.client.UploadAttachment(ctx, bytes.NewReader(content), messageID, p.manifestFile())
}

func (p *Pipeline) manifestFile() string {
	if p.cfg.ManifestFile != "" {
		return p.cfg.ManifestFile
	}
	return config.DefaultEFormidlingManifestFile
}

func (p *Pipeline) alert(ctx context.Context, message string) {
	if p.alerts == nil {
		return
	}
	if err := p.alerts.Alert(ctx, message); err != nil {
		applog.WithComponent(component).WithError(err).Warn("운영자 알림 전송 실패")
	}
}

func instanceID(instance *contract.Instance) string {
	if instance == nil {
		return ""
	}
	return instance.ID
}

// FileManifest 파일 시스템의 고정 매니페스트 문서를 제공합니다. 파일이 없으면 매니페스트 없이 발송합니다.
type FileManifest struct {
	path string
}

var _ contract.ManifestProvider = (*FileManifest)(nil)

func NewFileManifest(path string) *FileManifest {
	return &FileManifest{path: path}
}

func (m *FileManifest) GetManifest(_ context.Context, _ *contract.Instance) ([]byte, error) {
	content, err := readOptionalFile(m.path)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.System, "매니페스트 파일(%s)을 읽지 못했습니다", m.path)
	}
	return content, nil
}

func readOptionalFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return content, err
}
