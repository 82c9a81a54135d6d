package lifecycle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"encoding/xml"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/darkkaiser/app-runtime/internal/pkg/errors"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"golang.org/x/text/language"
)

const (
	// ReceiptDataType PDF 영수증 데이터 요소의 데이터 타입
	ReceiptDataType = "ref-data-as-pdf"

	receiptContentType = "application/pdf"

	// fallbackLanguage 사용자 언어와 기본 언어의 텍스트 리소스가 모두 없을 때 사용하는 언어
	fallbackLanguage = "nb"

	serviceNameTextID = "ServiceName"
)

// ReceiptArchiver 폼 데이터 요소를 PDF 영수증으로 렌더링하여 인스턴스에 첨부합니다.
type ReceiptArchiver struct {
	models    contract.ModelCatalog
	storage   contract.Storage
	resources contract.ResourceCatalog
	pdfFormat contract.PdfFormatHook
	options   *OptionsResolver
	renderer  contract.Renderer
	texts     contract.TextLookup
	profiles  contract.ProfileLookup
	parties   contract.PartyLookup

	serviceUserID   int
	defaultLanguage string
}

// Archive 요소의 모델을 읽어 PDFContext를 조립하고, 렌더링된 PDF를 "ref-data-as-pdf" 요소로 저장합니다.
func (a *ReceiptArchiver) Archive(ctx context.Context, instance *contract.Instance, taskID string, element *contract.DataElement, classRef string) (*contract.DataElement, error) {
	if instance == nil {
		return nil, contract.ErrInstanceRequired
	}

	layoutsText, settings, err := a.loadLayouts(element.DataType, taskID)
	if err != nil {
		return nil, err
	}

	model, err := a.models.NewModel(classRef)
	if err != nil {
		return nil, err
	}
	if err := a.storage.GetFormData(ctx, instance, element.ID, model); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ExternalService, "PDF 생성을 위한 폼 데이터(%s)를 읽지 못했습니다", element.ID)
	}

	if settings, err = a.pdfFormat.FormatPdf(ctx, settings, model); err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "PDF 레이아웃 설정 훅이 실패했습니다")
	}

	encoded, err := xml.Marshal(model)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.Internal, "'%s' 모델을 XML로 직렬화하지 못했습니다", classRef)
	}

	profile, err := a.userProfile(ctx)
	if err != nil {
		return nil, err
	}

	texts, err := a.textResource(ctx, instance, profile.ProfileSettingPreference.Language)
	if err != nil {
		return nil, err
	}

	optionsDictionary, err := a.options.Resolve(ctx, layoutsText)
	if err != nil {
		return nil, err
	}

	formLayouts := make(map[string]any)
	if layoutsText != "" {
		if err := json.Unmarshal([]byte(layoutsText), &formLayouts); err != nil {
			return nil, apperrors.Wrap(err, apperrors.DataIntegrity, "폼 레이아웃 형식이 올바르지 않습니다")
		}
	}

	party, err := a.instanceParty(ctx, instance)
	if err != nil {
		return nil, err
	}
	userParty := profile.Party
	if userParty == nil && profile.PartyID > 0 {
		if userParty, err = a.parties.GetParty(ctx, profile.PartyID); err != nil {
			return nil, err
		}
	}

	pdfContext := &contract.PDFContext{
		Data:              base64.StdEncoding.EncodeToString(encoded),
		FormLayouts:       formLayouts,
		LayoutSettings:    settings,
		TextResources:     texts,
		OptionsDictionary: optionsDictionary,
		Party:             party,
		UserParty:         userParty,
		UserProfile:       profile,
		Instance:          instance,
	}

	stream, err := a.renderer.GeneratePDF(ctx, pdfContext)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ExternalService, "PDF 렌더링에 실패했습니다")
	}
	defer stream.Close()

	serviceName, _ := texts.Text(serviceNameTextID)
	filename := receiptFilename(serviceName, instance.AppName())

	receipt, err := a.storage.InsertBinaryData(ctx, instance.ID, ReceiptDataType, receiptContentType, filename, stream)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ExternalService, "PDF 영수증 저장에 실패했습니다")
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"instance_id": instance.ID,
		"task_id":     taskID,
		"element_id":  element.ID,
		"receipt_id":  receipt.ID,
		"filename":    filename,
		"language":    texts.Language,
	}).Info("PDF 영수증 보관 완료")

	return receipt, nil
}

// loadLayouts 데이터 타입과 태스크에 맞는 레이아웃 세트가 있으면 그 세트를, 없으면 기본 레이아웃을 사용합니다.
func (a *ReceiptArchiver) loadLayouts(dataType, taskID string) (string, *contract.LayoutSettings, error) {
	setsText, err := a.resources.GetLayoutSets()
	if err != nil {
		return "", nil, err
	}

	var set *contract.LayoutSet
	if setsText != "" {
		var sets contract.LayoutSets
		if err := json.Unmarshal([]byte(setsText), &sets); err != nil {
			return "", nil, apperrors.Wrap(err, apperrors.DataIntegrity, "레이아웃 세트 형식이 올바르지 않습니다")
		}
		set = sets.Find(dataType, taskID)
	}

	var layoutsText, settingsText string
	if set != nil {
		if layoutsText, err = a.resources.GetLayoutsForSet(set.ID); err != nil {
			return "", nil, err
		}
		if settingsText, err = a.resources.GetLayoutSettingsForSet(set.ID); err != nil {
			return "", nil, err
		}
	} else {
		if layoutsText, err = a.resources.GetLayouts(); err != nil {
			return "", nil, err
		}
		if settingsText, err = a.resources.GetLayoutSettings(); err != nil {
			return "", nil, err
		}
	}

	settings := &contract.LayoutSettings{}
	if settingsText != "" {
		if err := json.Unmarshal([]byte(settingsText), settings); err != nil {
			return "", nil, apperrors.Wrap(err, apperrors.DataIntegrity, "레이아웃 설정 형식이 올바르지 않습니다")
		}
	}

	return layoutsText, settings, nil
}

// userProfile 요청 사용자의 프로필을 조회합니다. 컨텍스트에 사용자가 없으면 서비스 사용자를 사용합니다.
func (a *ReceiptArchiver) userProfile(ctx context.Context) (*contract.UserProfile, error) {
	userID, ok := contract.UserIDFromContext(ctx)
	if !ok {
		userID = a.serviceUserID
	}
	if userID <= 0 {
		return nil, apperrors.New(apperrors.InvalidInput, "PDF 영수증을 생성할 사용자를 확인할 수 없습니다")
	}

	profile, err := a.profiles.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.Newf(apperrors.NotFound, "사용자 프로필을 찾을 수 없습니다: %d", userID)
	}
	return profile, nil
}

// textResource 선호 언어, 기본 언어, "nb" 순서로 텍스트 리소스를 찾습니다.
func (a *ReceiptArchiver) textResource(ctx context.Context, instance *contract.Instance, preferred string) (*contract.TextResource, error) {
	org, app := instance.Org, instance.AppName()

	var tried []string
	for _, lang := range []string{
		normalizeLanguage(preferred, a.defaultLanguage),
		normalizeLanguage(a.defaultLanguage, ""),
		fallbackLanguage,
	} {
		if slices.Contains(tried, lang) {
			continue
		}
		tried = append(tried, lang)

		texts, err := a.texts.GetText(ctx, org, app, lang)
		if err != nil {
			return nil, err
		}
		if texts != nil {
			return texts, nil
		}
	}

	return nil, apperrors.Newf(apperrors.NotFound, "텍스트 리소스를 찾을 수 없습니다 (org: %s, app: %s, language: %s)", org, app, strings.Join(tried, ", "))
}

func (a *ReceiptArchiver) instanceParty(ctx context.Context, instance *contract.Instance) (*contract.Party, error) {
	partyID, err := strconv.Atoi(instance.InstanceOwner.PartyID)
	if err != nil || partyID <= 0 {
		return nil, apperrors.Newf(apperrors.DataIntegrity, "인스턴스 소유자의 당사자 ID가 올바르지 않습니다: '%s'", instance.InstanceOwner.PartyID)
	}
	return a.parties.GetParty(ctx, partyID)
}

// normalizeLanguage BCP 47 태그를 기본 언어 코드로 줄입니다(예: "nb-NO" → "nb").
// 비어있거나 해석할 수 없으면 fallback, 그것도 비어있으면 "nb"입니다.
func normalizeLanguage(tag, fallback string) string {
	for _, candidate := range []string{tag, fallback} {
		if candidate == "" {
			continue
		}
		parsed, err := language.Parse(candidate)
		if err != nil {
			continue
		}
		if base, confidence := parsed.Base(); confidence != language.No {
			return base.String()
		}
	}
	return fallbackLanguage
}
