package workflow

import (
	"context"
	"strings"

	"github.com/studygraph/backend/pkg/logger"
)

// TextExtractionFailed is the error recorded when an upload yields no
// extractable text.
const TextExtractionFailed = "Text extraction failed"

type handlerFunc func(ctx context.Context, state *WorkflowState) error

// Run drives the state machine from the route state to the end state.
// Handler errors are recorded on the state, never raised: the error
// state normalizes them and every run reaches the end state with the
// uniform success/error shape filled in.
func (c *Controller) Run(ctx context.Context, state *WorkflowState) *WorkflowState {
	for current := StateRoute; current != StateEnd; current = Transition(current, state) {
		handler, ok := c.table[current]
		if !ok {
			continue
		}
		if err := handler(ctx, state); err != nil {
			logger.Error("[Workflow][Run] State failed",
				"state", current,
				"action", state.Action,
				"err", err,
			)
			state.Error = err.Error()
		}
	}
	return state
}

// handleUpload turns the uploaded file into text for the extract
// state. Text already present on the state (URL ingestion hands it in
// pre-extracted) is kept as is. Extraction problems of any kind flag
// the state rather than abort the run.
func (c *Controller) handleUpload(ctx context.Context, state *WorkflowState) error {
	if state.ExtractedText != "" {
		return nil
	}

	text, fileType, err := c.loader.ExtractText(ctx, state.FileData, state.Filename)
	if err != nil {
		logger.Warn("[Workflow][Upload] Extraction failed",
			"filename", state.Filename,
			"err", err,
		)
		state.Error = TextExtractionFailed
		return nil
	}
	if strings.TrimSpace(text) == "" {
		state.Error = TextExtractionFailed
		return nil
	}

	state.ExtractedText = text
	state.FileType = fileType
	return nil
}

// handleExtract runs the ingestion pipeline. The run is successful
// even when every chunk soft-failed and the counts are zero; only a
// pipeline-level failure (store or embedding down) flags the state.
func (c *Controller) handleExtract(ctx context.Context, state *WorkflowState) error {
	result, err := c.ingestor.ProcessText(ctx, state.ExtractedText, state.UserID)
	if err != nil {
		return err
	}

	state.Processing = &result
	state.Success = true
	return nil
}

// handleQuery answers the question. A concept that is not in the graph
// is a successful run whose query result reports success false.
func (c *Controller) handleQuery(ctx context.Context, state *WorkflowState) error {
	result, err := c.answerer.Ask(ctx, state.Question, state.UserID, state.tracers...)
	if err != nil {
		return err
	}

	state.QueryResult = &result
	state.Success = true
	return nil
}

func (c *Controller) handleVisualize(ctx context.Context, state *WorkflowState) error {
	data, err := c.store.ExportGraph(ctx, state.UserID)
	if err != nil {
		return err
	}

	state.GraphData = &data
	state.Success = true
	return nil
}

func (c *Controller) handleError(_ context.Context, state *WorkflowState) error {
	state.Success = false
	return nil
}

// Upload ingests an uploaded file into the user's knowledge graph and
// reports the extraction counts.
func (c *Controller) Upload(ctx context.Context, userID string, fileData []byte, filename string) *WorkflowState {
	return c.Run(ctx, &WorkflowState{
		Action:   ActionUpload,
		UserID:   userID,
		FileData: fileData,
		Filename: filename,
	})
}

// UploadText ingests text that was already extracted elsewhere, such
// as the readable text of a web page. fileType is reported back the
// way a file upload reports its detected type.
func (c *Controller) UploadText(ctx context.Context, userID string, text string, fileType string) *WorkflowState {
	return c.Run(ctx, &WorkflowState{
		Action:        ActionUpload,
		UserID:        userID,
		ExtractedText: text,
		FileType:      fileType,
	})
}

// Ask answers a question from the user's uploaded materials. Optional
// tracers observe what the query pipeline considered and used.
func (c *Controller) Ask(ctx context.Context, userID string, question string, tracers ...query.Tracer) *WorkflowState {
	return c.Run(ctx, &WorkflowState{
		Action:   ActionQuery,
		UserID:   userID,
		Question: question,
		tracers:  tracers,
	})
}

// Visualize exports the user's graph in the node/edge shape
// visualization clients render.
func (c *Controller) Visualize(ctx context.Context, userID string) *WorkflowState {
	return c.Run(ctx, &WorkflowState{
		Action: ActionVisualize,
		UserID: userID,
	})
}

// Reset deletes the user's partition: entities, relationships, and
// stored chunks.
func (c *Controller) Reset(ctx context.Context, userID string) error {
	return c.store.DeletePartition(ctx, userID)
}
