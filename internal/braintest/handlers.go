package braintest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the request body into out, writing the error envelope
// on failure.
func bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		writeError(c, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return false
	}

	return true
}

// pathVersion parses the :version path parameter.
func pathVersion(c *gin.Context) (int, bool) {
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		writeError(c, http.StatusBadRequest, codeBadRequest, "invalid version "+strconv.Quote(c.Param("version")))
		return 0, false
	}

	return version, true
}

// brainBody covers both brain create and update payloads.
type brainBody struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName"`
	Description *string `json:"description"`
}

func (s *Service) createBrain(c *gin.Context) {
	var body brainBody
	if !bindJSON(c, &body) {
		return
	}

	brain := Brain{Name: c.Param("brain"), DisplayName: body.DisplayName}
	if body.Description != nil {
		brain.Description = *body.Description
	}

	created, err := s.store.CreateBrain(c.Param("workspace"), brain)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (s *Service) listBrains(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"value": s.store.Brains(c.Param("workspace"))})
}

func (s *Service) getBrain(c *gin.Context) {
	brain, err := s.store.Brain(c.Param("workspace"), c.Param("brain"))
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, brain)
}

func (s *Service) updateBrain(c *gin.Context) {
	var body brainBody
	if !bindJSON(c, &body) {
		return
	}

	var description string
	if body.Description != nil {
		description = *body.Description
	}

	updated, err := s.store.UpdateBrain(c.Param("workspace"), c.Param("brain"), body.DisplayName, description)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Service) deleteBrain(c *gin.Context) {
	if err := s.store.DeleteBrain(c.Param("workspace"), c.Param("brain")); err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

type createVersionBody struct {
	SourceVersion int    `json:"sourceVersion"`
	Description   string `json:"description"`
}

func (s *Service) createBrainVersion(c *gin.Context) {
	var body createVersionBody
	if !bindJSON(c, &body) {
		return
	}

	created, err := s.store.CreateBrainVersion(c.Param("workspace"), c.Param("brain"), body.SourceVersion, body.Description)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (s *Service) listBrainVersions(c *gin.Context) {
	versions, err := s.store.BrainVersions(c.Param("workspace"), c.Param("brain"))
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"value": versions})
}

func (s *Service) getBrainVersion(c *gin.Context) {
	version, ok := pathVersion(c)
	if !ok {
		return
	}

	v, err := s.store.BrainVersion(c.Param("workspace"), c.Param("brain"), version)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, v)
}

// updateVersionBody accepts either a details or an inkling update; both
// arrive on the same route.
type updateVersionBody struct {
	Description *string `json:"description"`
	Inkling     *string `json:"inkling"`
}

func (s *Service) updateBrainVersion(c *gin.Context) {
	version, ok := pathVersion(c)
	if !ok {
		return
	}

	var body updateVersionBody
	if !bindJSON(c, &body) {
		return
	}

	updated, err := s.store.UpdateBrainVersion(c.Param("workspace"), c.Param("brain"), version, func(v *BrainVersion) {
		if body.Description != nil {
			v.Description = *body.Description
		}
		if body.Inkling != nil {
			v.Inkling = *body.Inkling
		}
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Service) deleteBrainVersion(c *gin.Context) {
	version, ok := pathVersion(c)
	if !ok {
		return
	}

	if err := s.store.DeleteBrainVersion(c.Param("workspace"), c.Param("brain"), version); err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

// transitionVersion returns a handler that moves a brain version into
// state.
func (s *Service) transitionVersion(state string) gin.HandlerFunc {
	return func(c *gin.Context) {
		version, ok := pathVersion(c)
		if !ok {
			return
		}

		updated, err := s.store.UpdateBrainVersion(c.Param("workspace"), c.Param("brain"), version, func(v *BrainVersion) {
			v.State = state
		})
		if err != nil {
			writeStoreError(c, err)
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

type resetTrainingBody struct {
	ResetAll bool `json:"resetAll"`
	Concepts []struct {
		Name        string `json:"name"`
		LessonIndex string `json:"lessonIndex"`
	} `json:"concepts"`
}

func (s *Service) resetTraining(c *gin.Context) {
	version, ok := pathVersion(c)
	if !ok {
		return
	}

	var body resetTrainingBody
	if !bindJSON(c, &body) {
		return
	}

	if !body.ResetAll && len(body.Concepts) == 0 {
		writeError(c, http.StatusBadRequest, codeBadRequest, "resetAll or at least one concept is required")
		return
	}

	updated, err := s.store.UpdateBrainVersion(c.Param("workspace"), c.Param("brain"), version, func(v *BrainVersion) {
		v.State = StateIdle
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Service) createSimulatorPackage(c *gin.Context) {
	var record map[string]any
	if !bindJSON(c, &record) {
		return
	}

	created, err := s.store.CreateSimulatorPackage(c.Param("workspace"), c.Param("package"), record)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (s *Service) listSimulatorPackages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"value": s.store.SimulatorPackages(c.Param("workspace"))})
}

func (s *Service) getSimulatorPackage(c *gin.Context) {
	record, err := s.store.SimulatorPackage(c.Param("workspace"), c.Param("package"))
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (s *Service) updateSimulatorPackage(c *gin.Context) {
	var patch map[string]any
	if !bindJSON(c, &patch) {
		return
	}

	updated, err := s.store.UpdateSimulatorPackage(c.Param("workspace"), c.Param("package"), patch)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Service) deleteSimulatorPackage(c *gin.Context) {
	if err := s.store.DeleteSimulatorPackage(c.Param("workspace"), c.Param("package")); err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (s *Service) createSimulatorCollection(c *gin.Context) {
	var record map[string]any
	if !bindJSON(c, &record) {
		return
	}

	if record["purpose"] == nil {
		writeError(c, http.StatusBadRequest, codeBadRequest, "purpose is required")
		return
	}

	created, err := s.store.CreateSimulatorCollection(c.Param("workspace"), c.Param("package"), record)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (s *Service) listSimulatorCollections(c *gin.Context) {
	records, err := s.store.SimulatorCollections(c.Param("workspace"), c.Param("package"))
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"value": records})
}

func (s *Service) getSimulatorCollection(c *gin.Context) {
	record, err := s.store.SimulatorCollection(c.Param("workspace"), c.Param("package"), c.Param("collection"))
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (s *Service) updateSimulatorCollection(c *gin.Context) {
	var patch map[string]any
	if !bindJSON(c, &patch) {
		return
	}

	updated, err := s.store.UpdateSimulatorCollection(c.Param("workspace"), c.Param("package"), c.Param("collection"), patch)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Service) deleteSimulatorCollection(c *gin.Context) {
	if err := s.store.DeleteSimulatorCollection(c.Param("workspace"), c.Param("package"), c.Param("collection")); err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (s *Service) listBaseImages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"value": s.store.BaseImages(c.Param("workspace"))})
}

func (s *Service) getBaseImage(c *gin.Context) {
	image, err := s.store.BaseImage(c.Param("workspace"), c.Param("image"))
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, image)
}

type exportedBrainBody struct {
	Name                  string  `json:"name"`
	Subscription          string  `json:"subscription"`
	ResourceGroup         string  `json:"resourceGroup"`
	ProcessorArchitecture string  `json:"processorArchitecture"`
	BrainName             string  `json:"brainName"`
	BrainVersion          int     `json:"brainVersion"`
	DisplayName           *string `json:"displayName"`
	Description           *string `json:"description"`
}

func (s *Service) createExportedBrain(c *gin.Context) {
	var body exportedBrainBody
	if !bindJSON(c, &body) {
		return
	}

	exported := ExportedBrain{
		Name:                  body.Name,
		Subscription:          body.Subscription,
		ResourceGroup:         body.ResourceGroup,
		ProcessorArchitecture: body.ProcessorArchitecture,
		BrainName:             body.BrainName,
		BrainVersion:          body.BrainVersion,
	}
	if body.DisplayName != nil {
		exported.DisplayName = *body.DisplayName
	}
	if body.Description != nil {
		exported.Description = *body.Description
	}

	created, err := s.store.CreateExportedBrain(c.Param("workspace"), exported)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (s *Service) listExportedBrains(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"value": s.store.ExportedBrains(c.Param("workspace"))})
}

func (s *Service) getExportedBrain(c *gin.Context) {
	exported, err := s.store.ExportedBrain(c.Param("workspace"), c.Param("exported"))
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, exported)
}

func (s *Service) updateExportedBrain(c *gin.Context) {
	var body exportedBrainBody
	if !bindJSON(c, &body) {
		return
	}

	var displayName, description string
	if body.DisplayName != nil {
		displayName = *body.DisplayName
	}
	if body.Description != nil {
		description = *body.Description
	}

	updated, err := s.store.UpdateExportedBrain(c.Param("workspace"), c.Param("exported"), displayName, description)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Service) deleteExportedBrain(c *gin.Context) {
	if err := s.store.DeleteExportedBrain(c.Param("workspace"), c.Param("exported")); err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (s *Service) listSessions(c *gin.Context) {
	sessions := s.store.Sessions(c.Param("workspace"))
	filter := c.Query("deployment_mode")

	filtered := make([]SimulatorSession, 0, len(sessions))
	for _, session := range sessions {
		if matchesDeployment(session.DeploymentMode, filter) {
			filtered = append(filtered, session)
		}
	}

	c.JSON(http.StatusOK, gin.H{"value": filtered})
}

// matchesDeployment applies the deployment_mode query filter. A "neq:"
// prefix inverts the comparison.
func matchesDeployment(mode, filter string) bool {
	if filter == "" {
		return true
	}

	if rest, ok := strings.CutPrefix(filter, "neq:"); ok {
		return mode != rest
	}

	return mode == filter
}

func (s *Service) getSession(c *gin.Context) {
	session, err := s.store.Session(c.Param("workspace"), c.Param("session"))
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

type patchSessionBody struct {
	PurposeOperation string         `json:"purposeOperation"`
	Purpose          SessionPurpose `json:"purpose"`
}

func (s *Service) patchSession(c *gin.Context) {
	var body patchSessionBody
	if !bindJSON(c, &body) {
		return
	}

	if body.PurposeOperation != "SetValue" {
		writeError(c, http.StatusBadRequest, codeBadRequest, "unsupported purposeOperation "+strconv.Quote(body.PurposeOperation))
		return
	}

	updated, err := s.store.SetSessionPurpose(c.Param("workspace"), c.Param("session"), body.Purpose)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
