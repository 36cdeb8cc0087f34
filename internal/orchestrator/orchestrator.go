// Package orchestrator drives a job through the Uploaded→Analyzing→
// Exporting→Completed|Failed|Cancelled state machine, dispatching
// the probe/decode/silence/filler/plan/export pipeline on a bounded
// worker pool and pushing progress over realtime.Hub.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/tycoonteritory/AutoCut/internal/db"
	"github.com/tycoonteritory/AutoCut/internal/export/legacy"
	"github.com/tycoonteritory/AutoCut/internal/export/structural"
	"github.com/tycoonteritory/AutoCut/internal/filler"
	"github.com/tycoonteritory/AutoCut/internal/logging"
	"github.com/tycoonteritory/AutoCut/internal/model"
	"github.com/tycoonteritory/AutoCut/internal/planner"
	"github.com/tycoonteritory/AutoCut/internal/probe"
	"github.com/tycoonteritory/AutoCut/internal/realtime"
	"github.com/tycoonteritory/AutoCut/internal/silence"
	"github.com/tycoonteritory/AutoCut/internal/subtitle"
	"github.com/tycoonteritory/AutoCut/internal/transcribe"
)

// Deps bundles the orchestrator's collaborators so an Orchestrator stays
// constructible in tests without a real ffmpeg/whisper toolchain.
type Deps struct {
	Store       *db.Store
	Hubs        *realtime.Registry
	Prober      *probe.Prober
	Decoder     *probe.Decoder
	Transcriber transcribe.Provider // nil disables transcription
}

// Orchestrator owns the bounded worker pool and the set of in-flight
// cancellation handles.
type Orchestrator struct {
	deps          Deps
	sem           *semaphore.Weighted
	maxConcurrent int

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// New creates an Orchestrator that runs at most maxConcurrent analyses at
// once (the configured max_concurrent_analyses).
func New(deps Deps, maxConcurrent int) *Orchestrator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Orchestrator{
		deps:          deps,
		sem:           semaphore.NewWeighted(int64(maxConcurrent)),
		maxConcurrent: maxConcurrent,
		cancels:       make(map[string]context.CancelFunc),
	}
}

// IsRunning reports whether jobID currently has an in-flight pipeline
// goroutine in this process.
func (o *Orchestrator) IsRunning(jobID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.cancels[jobID]
	return ok
}

// Occupancy reports the worker pool's configured capacity and the number
// of analyses currently in flight, for the health endpoint.
func (o *Orchestrator) Occupancy() (capacity, inFlight int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.maxConcurrent, len(o.cancels)
}

// Submit queues job for analysis. It returns immediately; the pipeline
// runs on its own goroutine once a worker slot is free.
func (o *Orchestrator) Submit(job *model.Job) {
	ctx, cancel := context.WithCancel(context.Background())
	o.mu.Lock()
	o.cancels[job.ID] = cancel
	o.mu.Unlock()

	go o.run(ctx, job)
}

// Cancel requests cancellation of a running job.
// Returns false if the job isn't currently running.
func (o *Orchestrator) Cancel(jobID string) bool {
	o.mu.Lock()
	cancel, ok := o.cancels[jobID]
	o.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}

// RecoverInterrupted marks every job a prior crash left in Uploading,
// Analyzing or Exporting as Failed with ReasonInterrupted: AutoCut never
// silently resumes an unknown pipeline state. Jobs in Uploaded are left
// unchanged.
func (o *Orchestrator) RecoverInterrupted(ctx context.Context) error {
	jobs, err := o.deps.Store.InterruptedJobs(ctx)
	if err != nil {
		return fmt.Errorf("list interrupted jobs: %w", err)
	}
	for _, job := range jobs {
		job.Status = model.StatusFailed
		job.ErrorReason = model.ReasonInterrupted
		job.ErrorDetail = "process restarted while job was in flight"
		if err := o.deps.Store.SaveJob(ctx, job); err != nil {
			logging.Errorf("orchestrator: mark job %s interrupted: %v", job.ID, err)
		}
	}
	return nil
}

func (o *Orchestrator) run(ctx context.Context, job *model.Job) {
	defer func() {
		o.mu.Lock()
		delete(o.cancels, job.ID)
		o.mu.Unlock()
	}()

	if err := o.sem.Acquire(ctx, 1); err != nil {
		o.fail(ctx, job, model.ReasonCancelled, "cancelled before a worker slot was available")
		return
	}
	defer o.sem.Release(1)

	jobLog, err := logging.NewJobLogger(job.ID, job.OutputDir)
	if err != nil {
		logging.Errorf("orchestrator: open job log for %s: %v", job.ID, err)
	}
	if jobLog != nil {
		defer jobLog.Close()
	}

	hub := o.deps.Hubs.HubFor(job.ID)

	o.transition(ctx, job, model.StatusAnalyzing, "probing source")
	hub.Publish(realtime.Event{Type: "progress", Status: string(job.Status), Progress: 0, Phase: "probe"})

	info, err := o.deps.Prober.Probe(ctx, job.SourcePath)
	if err != nil {
		o.fail(ctx, job, model.ReasonProbeFailed, err.Error())
		hub.Publish(realtime.Event{Type: "failed", Status: string(job.Status), Message: err.Error()})
		return
	}
	if jobLog != nil {
		jobLog.Infof("probed source: duration=%.3fs sample_rate=%d channels=%d", info.DurationS, info.SampleRateHz, info.Channels)
	}

	const targetSampleRate = 16000
	pcmCh, _, handle, err := o.deps.Decoder.Stream(ctx, job.SourcePath, targetSampleRate, 1)
	if err != nil {
		o.fail(ctx, job, model.ReasonDecodeFailed, err.Error())
		hub.Publish(realtime.Event{Type: "failed", Status: string(job.Status), Message: err.Error()})
		return
	}
	defer handle.Terminate()

	windower := silence.NewWindower(1, targetSampleRate/100)
	windows := make(chan []int16, 64)
	assembler := probe.NewFrameAssembler(1)

	go func() {
		defer close(windows)
		for chunk := range pcmCh {
			for _, frame := range assembler.Push(chunk) {
				if win, ready := windower.Push(frame); ready {
					windows <- win
				}
			}
		}
		if win, ready := windower.Flush(); ready {
			windows <- win
		}
	}()

	totalWindows := int64(0)
	if info.DurationS > 0 {
		totalWindows = int64(info.DurationS*1000/10) + 1
	}

	silences, err := silence.Analyze(ctx, windows, silence.Options{
		SampleRateHz: targetSampleRate,
		ThresholdDB:  job.Settings.SilenceThresholdDB,
		MinSilenceMs: job.Settings.MinSilenceMs,
		TotalWindows: totalWindows,
		Progress: func(frac float64) {
			hub.Publish(realtime.Event{Type: "progress", Status: string(job.Status), Progress: frac * 0.6, Phase: "silence_detection"})
		},
	})
	if err != nil {
		o.fail(ctx, job, model.ReasonAnalysisInternal, err.Error())
		hub.Publish(realtime.Event{Type: "failed", Status: string(job.Status), Message: err.Error()})
		return
	}

	var fillers []model.FillerHit
	var segments []model.TranscriptSegment
	if job.Settings.DetectFillers && o.deps.Transcriber != nil {
		hub.Publish(realtime.Event{Type: "progress", Status: string(job.Status), Progress: 0.65, Phase: "transcription"})
		samples, err := decodeFloatSamples(ctx, job.SourcePath, o.deps.Decoder, targetSampleRate)
		if err != nil {
			if jobLog != nil {
				jobLog.Errorf("transcription unavailable: %v", err)
			}
		} else {
			segments, err = o.deps.Transcriber.Transcribe(ctx, samples, targetSampleRate, transcribe.Options{
				ModelSize: job.Settings.TranscriptionModel,
			})
			if err != nil {
				if jobLog != nil {
					jobLog.Errorf("transcription failed, continuing without fillers: %v", err)
				}
			} else {
				fillers = filler.Detect(segments, job.Settings.FillerSensitivity)
			}
		}
	}

	hub.Publish(realtime.Event{Type: "progress", Status: string(job.Status), Progress: 0.85, Phase: "planning"})
	cuts := planner.Plan(info.DurationS, silences, fillers, job.Settings.PaddingMs, job.Settings.Fps)

	o.transition(ctx, job, model.StatusExporting, "rendering EDLs")
	hub.Publish(realtime.Event{Type: "progress", Status: string(job.Status), Progress: 0.9, Phase: "export"})

	report := &model.AnalysisReport{
		DurationS:    info.DurationS,
		SampleRateHz: int(info.SampleRateHz),
		Silences:     silences,
		Fillers:      fillers,
		Cuts:         cuts,
		PaddingMs:    job.Settings.PaddingMs,
		Fps:          job.Settings.Fps,
	}
	for _, c := range cuts {
		report.TotalKeptS += c.Duration()
	}
	report.TotalRemovedS = info.DurationS - report.TotalKeptS

	resultPaths, err := o.export(job, cuts, segments)
	if err != nil {
		o.fail(ctx, job, model.ReasonAnalysisInternal, err.Error())
		hub.Publish(realtime.Event{Type: "failed", Status: string(job.Status), Message: err.Error()})
		return
	}

	job.Report = report
	job.ResultPaths = resultPaths
	job.Progress = 1
	o.transition(ctx, job, model.StatusCompleted, "done")
	hub.Publish(realtime.Event{Type: "completed", Status: string(job.Status), Progress: 1, Phase: "done"})
}

func (o *Orchestrator) export(job *model.Job, cuts []model.Cut, segments []model.TranscriptSegment) (map[string]string, error) {
	paths := make(map[string]string)

	legacyXML, err := legacy.Render(cuts, legacy.Options{SourcePath: job.SourcePath, Fps: job.Settings.Fps})
	if err != nil {
		return nil, fmt.Errorf("render legacy EDL: %w", err)
	}
	if err := writeFileAtomic(job.OutputDir, "edl_legacy.xml", legacyXML); err != nil {
		return nil, err
	}
	paths["edl_legacy"] = "edl_legacy.xml"

	structuralXML, err := structural.Render(cuts, structural.Options{SourcePath: job.SourcePath, Fps: job.Settings.Fps})
	if err != nil {
		return nil, fmt.Errorf("render structural EDL: %w", err)
	}
	if err := writeFileAtomic(job.OutputDir, "edl_structural.xml", structuralXML); err != nil {
		return nil, err
	}
	paths["edl_structural"] = "edl_structural.xml"

	if len(segments) > 0 {
		if err := writeFileAtomic(job.OutputDir, "transcript.srt", []byte(subtitle.SRT(segments))); err != nil {
			return nil, err
		}
		paths["srt"] = "transcript.srt"
		if err := writeFileAtomic(job.OutputDir, "transcript.vtt", []byte(subtitle.VTT(segments))); err != nil {
			return nil, err
		}
		paths["vtt"] = "transcript.vtt"
		if err := writeFileAtomic(job.OutputDir, "transcript.txt", []byte(subtitle.TXT(segments))); err != nil {
			return nil, err
		}
		paths["txt"] = "transcript.txt"
	}

	return paths, nil
}

func (o *Orchestrator) transition(ctx context.Context, job *model.Job, to model.Status, message string) {
	if !model.CanTransition(job.Status, to) {
		logging.Errorf("orchestrator: illegal transition %s -> %s for job %s", job.Status, to, job.ID)
		return
	}
	job.Status = to
	job.Message = message
	if err := o.deps.Store.SaveJob(ctx, job); err != nil {
		logging.Errorf("orchestrator: persist job %s: %v", job.ID, err)
	}
}

func (o *Orchestrator) fail(ctx context.Context, job *model.Job, reason model.ErrorReason, detail string) {
	if ctx.Err() != nil {
		reason = model.ReasonCancelled
		detail = "cancelled"
	}
	if model.CanTransition(job.Status, model.StatusCancelled) && reason == model.ReasonCancelled {
		job.Status = model.StatusCancelled
	} else if model.CanTransition(job.Status, model.StatusFailed) {
		job.Status = model.StatusFailed
	}
	job.ErrorReason = reason
	job.ErrorDetail = detail
	job.Message = detail
	if err := o.deps.Store.SaveJob(ctx, job); err != nil {
		logging.Errorf("orchestrator: persist failed job %s: %v", job.ID, err)
	}
}

