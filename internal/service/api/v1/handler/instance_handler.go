package handler

import (
	"context"
	"mime"
	"net/http"
	"slices"
	"strconv"

	"github.com/darkkaiser/app-runtime/internal/service/api/httputil"
	"github.com/darkkaiser/app-runtime/internal/service/contract"
	applog "github.com/darkkaiser/app-runtime/pkg/log"
	"github.com/labstack/echo/v4"
)

// CreateInstanceHandler godoc
// @Summary 인스턴스 생성
// @Description 새 GUID로 인스턴스를 만들고 프로세스 시작 이벤트를 기록합니다.
// @Description 첫 태스크는 별도의 start 요청으로 시작합니다.
// @Tags Instance
// @Accept json
// @Produce json
// @Param X-Access-Key header string false "접근 키 (api.access_keys가 설정된 경우 필수)"
// @Param request body handler.CreateInstanceRequest true "인스턴스 소유자"
// @Success 201 {object} contract.Instance "생성된 인스턴스"
// @Failure 400 {object} httputil.ErrorResponse "잘못된 요청"
// @Failure 401 {object} httputil.ErrorResponse "접근 키 누락 또는 불일치"
// @Failure 500 {object} httputil.ErrorResponse "서버 내부 오류"
// @Security AccessKeyAuth
// @Router /api/v1/instances [post]
func (h *Handler) CreateInstanceHandler(c echo.Context) error {
	req := new(CreateInstanceRequest)
	if err := c.Bind(req); err != nil {
		return httputil.NewBadRequestError("잘못된 요청 형식입니다")
	}
	if err := h.validate.Struct(req); err != nil {
		return httputil.NewBadRequestError("partyId는 양의 정수여야 합니다")
	}

	ctx := c.Request().Context()
	key := contract.NewInstanceKey(req.PartyID)
	startEvent := h.lifecycle.OnInstantiateGetStartEvent()

	instance := &contract.Instance{
		ID:            key.String(),
		AppID:         h.metadata.ID,
		Org:           h.metadata.Org,
		InstanceOwner: contract.InstanceOwner{PartyID: strconv.Itoa(req.PartyID)},
		Process:       &contract.ProcessState{StartEvent: startEvent},
		Data:          []*contract.DataElement{},
	}

	if err := h.instances.CreateInstance(ctx, instance); err != nil {
		return err
	}
	if err := h.lifecycle.OnStartProcess(ctx, startEvent, instance); err != nil {
		return err
	}

	h.log(c).WithField("instance_id", instance.ID).Info("인스턴스 생성 완료")

	return c.JSON(http.StatusCreated, instance)
}

// GetInstanceHandler godoc
// @Summary 인스턴스 조회
// @Tags Instance
// @Produce json
// @Param X-Access-Key header string false "접근 키"
// @Param partyId path int true "인스턴스 소유자 당사자 ID"
// @Param guid path string true "인스턴스 GUID"
// @Success 200 {object} contract.Instance "인스턴스"
// @Failure 400 {object} httputil.ErrorResponse "잘못된 인스턴스 ID"
// @Failure 404 {object} httputil.ErrorResponse "인스턴스 없음"
// @Security AccessKeyAuth
// @Router /api/v1/instances/{partyId}/{guid} [get]
func (h *Handler) GetInstanceHandler(c echo.Context) error {
	key, err := instanceKey(c)
	if err != nil {
		return err
	}

	instance, err := h.instances.GetInstance(c.Request().Context(), key)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, instance)
}

// UploadDataHandler godoc
// @Summary 바이너리 데이터 업로드
// @Description 요청 본문을 바이너리 첨부로 저장합니다. 파일 이름은 Content-Disposition 헤더에서 읽습니다.
// @Description 데이터 타입이 특정 태스크에 묶여 있으면 그 태스크가 진행 중일 때만 업로드할 수 있습니다.
// @Tags Instance
// @Accept octet-stream
// @Produce json
// @Param X-Access-Key header string false "접근 키"
// @Param partyId path int true "인스턴스 소유자 당사자 ID"
// @Param guid path string true "인스턴스 GUID"
// @Param dataType query string true "데이터 타입 ID"
// @Param Content-Disposition header string false "첨부 파일 이름 (예: attachment; filename=report.pdf)"
// @Success 201 {object} contract.DataElement "저장된 데이터 요소"
// @Failure 400 {object} httputil.ErrorResponse "알 수 없거나 업로드할 수 없는 데이터 타입"
// @Failure 409 {object} httputil.ErrorResponse "태스크 불일치, 최대 개수 초과 또는 동시 요청"
// @Failure 415 {object} httputil.ErrorResponse "허용되지 않는 Content-Type"
// @Security AccessKeyAuth
// @Router /api/v1/instances/{partyId}/{guid}/data [post]
func (h *Handler) UploadDataHandler(c echo.Context) error {
	dataTypeID := c.QueryParam("dataType")
	dataType, ok := h.dataType(dataTypeID)
	if !ok {
		return httputil.NewBadRequestError("알 수 없는 데이터 타입입니다: '" + dataTypeID + "'")
	}
	if dataType.AppLogic != nil {
		return httputil.NewBadRequestError("폼 데이터 타입에는 바이너리를 업로드할 수 없습니다: '" + dataTypeID + "'")
	}

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if len(dataType.AllowedContentTypes) > 0 && !slices.Contains(dataType.AllowedContentTypes, contentType) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, httputil.ErrorResponse{
			ResultCode: http.StatusUnsupportedMediaType,
			Message:    "데이터 타입 '" + dataTypeID + "'에 허용되지 않는 Content-Type입니다: '" + contentType + "'",
		})
	}

	var filename string
	if _, params, err := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentDisposition)); err == nil {
		filename = params["filename"]
	}

	return h.withInstance(c, func(ctx context.Context, instance *contract.Instance) error {
		if dataType.TaskID != "" && currentTaskID(instance) != dataType.TaskID {
			return httputil.NewConflictError("데이터 타입 '" + dataTypeID + "'은(는) 태스크 '" + dataType.TaskID + "' 진행 중에만 업로드할 수 있습니다")
		}
		if dataType.MaxCount > 0 && len(instance.DataElementsOf(dataTypeID)) >= dataType.MaxCount {
			return httputil.NewConflictError("데이터 타입 '" + dataTypeID + "'의 최대 개수(" + strconv.Itoa(dataType.MaxCount) + ")를 초과합니다")
		}

		element, err := h.binaries.InsertBinaryData(ctx, instance.ID, dataTypeID, contentType, filename, c.Request().Body)
		if err != nil {
			return err
		}

		h.log(c).WithFields(applog.Fields{
			"instance_id": instance.ID,
			"data_type":   dataTypeID,
			"element_id":  element.ID,
			"size":        element.Size,
		}).Info("첨부 업로드 완료")

		return c.JSON(http.StatusCreated, element)
	})
}
