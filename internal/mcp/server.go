package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/envdoctor/internal/config"
	"github.com/Aman-CERP/envdoctor/internal/preflight"
	"github.com/Aman-CERP/envdoctor/internal/report"
	"github.com/Aman-CERP/envdoctor/pkg/version"
)

// ToolCheckEnvironment is the name of the check tool.
const ToolCheckEnvironment = "check_environment"

// ConfigResourceURI addresses the effective configuration resource.
const ConfigResourceURI = "envdoctor://config"

// Source runs checks and resolves configuration for one workspace.
type Source interface {
	Check(ctx context.Context) (report.Report, error)
	Config() (*config.Config, error)
}

// Server is the MCP server for envdoctor.
type Server struct {
	mcp    *mcp.Server
	source Source
	root   string
	logger *slog.Logger
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// CheckInput defines the input schema for the check_environment tool.
type CheckInput struct {
	Verbose bool `json:"verbose,omitempty" jsonschema:"include details of passing checks"`
}

// CheckOutput defines the output schema for the check_environment tool.
type CheckOutput struct {
	Project  ProjectInfo     `json:"project"`
	Verdict  string          `json:"verdict" jsonschema:"ready, usable or blocked"`
	Guidance string          `json:"guidance" jsonschema:"what to do next"`
	Aborted  bool            `json:"aborted" jsonschema:"true when a foundational tool is missing and later groups were skipped"`
	Counts   CheckCounts     `json:"counts"`
	Critical []OutcomeOutput `json:"critical,omitempty" jsonschema:"failures that block all development"`
	Groups   []GroupOutput   `json:"groups"`
}

// CheckCounts partitions the outcomes by status.
type CheckCounts struct {
	Pass  int `json:"pass"`
	Warn  int `json:"warn"`
	Fail  int `json:"fail"`
	Total int `json:"total"`
}

// GroupOutput is one check group and its outcomes.
type GroupOutput struct {
	Name      string          `json:"name"`
	Status    string          `json:"status" jsonschema:"pass, warn or fail"`
	Satisfied bool            `json:"satisfied"`
	Outcomes  []OutcomeOutput `json:"outcomes"`
}

// OutcomeOutput is a single check result.
type OutcomeOutput struct {
	Name     string `json:"name"`
	Status   string `json:"status" jsonschema:"pass, warn or fail"`
	Message  string `json:"message"`
	Details  string `json:"details,omitempty"`
	Critical bool   `json:"critical,omitempty"`
}

// NewServer creates a new MCP server for the workspace at root.
func NewServer(source Source, root string) (*Server, error) {
	if source == nil {
		return nil, errors.New("check source is required")
	}

	s := &Server{
		source: source,
		root:   root,
		logger: slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "envdoctor",
			Version: version.Version,
		},
		nil, // capabilities are inferred from registered tools/resources
	)

	s.registerTools()
	s.registerResources()
	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return "envdoctor", version.Version
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{
			Name: ToolCheckEnvironment,
			Description: "Inspect the local development environment of the workspace: toolchains, project files, " +
				"installed dependencies, package builds, environment files, IDE config and git hooks. " +
				"Returns a verdict (ready, usable, blocked), the critical failures and every check result. Read-only.",
		},
	}
}

func (s *Server) registerTools() {
	tools := s.ListTools()
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        tools[0].Name,
		Description: tools[0].Description,
	}, s.mcpCheckHandler)
	s.logger.Debug("Registered tool", slog.String("name", ToolCheckEnvironment))
}

// mcpCheckHandler is the MCP SDK handler for the check_environment tool.
func (s *Server) mcpCheckHandler(ctx context.Context, _ *mcp.CallToolRequest, input CheckInput) (
	*mcp.CallToolResult,
	CheckOutput,
	error,
) {
	start := time.Now()
	requestID := generateRequestID()

	s.logger.Info("check_environment started",
		slog.String("request_id", requestID),
		slog.Bool("verbose", input.Verbose))

	rep, err := s.source.Check(ctx)
	if err != nil {
		s.logger.Error("check_environment failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		return nil, CheckOutput{}, MapError(err)
	}

	manifest := config.NewConfig().Project.Manifest
	if cfg, err := s.source.Config(); err == nil {
		manifest = cfg.Project.Manifest
	}

	out := toCheckOutput(rep, input.Verbose)
	out.Project = detectProject(s.root, manifest)

	s.logger.Info("check_environment completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", time.Since(start)),
		slog.String("verdict", out.Verdict))

	return nil, out, nil
}

func (s *Server) registerResources() {
	s.mcp.AddResource(
		&mcp.Resource{
			Name:        "config",
			URI:         ConfigResourceURI,
			Description: "Effective envdoctor configuration for the workspace (defaults, user and project config, env overrides)",
			MIMEType:    "application/yaml",
		},
		s.handleConfigResource,
	)
}

func (s *Server) handleConfigResource(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	cfg, err := s.source.Config()
	if err != nil {
		return nil, MapError(err)
	}

	var b strings.Builder
	if err := cfg.WriteYAML(&b); err != nil {
		return nil, MapError(err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      ConfigResourceURI,
				MIMEType: "application/yaml",
				Text:     b.String(),
			},
		},
	}, nil
}

// toCheckOutput converts a report. Details of passing outcomes are kept
// only when verbose.
func toCheckOutput(rep report.Report, verbose bool) CheckOutput {
	sum := rep.Summary
	out := CheckOutput{
		Verdict:  string(sum.Verdict),
		Guidance: guidance(sum),
		Aborted:  sum.Aborted,
		Counts:   CheckCounts{Pass: sum.Pass, Warn: sum.Warn, Fail: sum.Fail, Total: sum.Total},
		Groups:   make([]GroupOutput, 0, len(rep.Groups)),
	}

	for _, o := range sum.Critical {
		out.Critical = append(out.Critical, toOutcomeOutput(o, true))
	}

	for _, g := range rep.Groups {
		group := GroupOutput{
			Name:      g.Name,
			Status:    g.Status.String(),
			Satisfied: g.Satisfied,
			Outcomes:  []OutcomeOutput{},
		}
		for _, o := range rep.Outcomes {
			if o.Group == g.Name {
				group.Outcomes = append(group.Outcomes, toOutcomeOutput(o, verbose))
			}
		}
		out.Groups = append(out.Groups, group)
	}
	return out
}

func toOutcomeOutput(o preflight.Outcome, verbose bool) OutcomeOutput {
	out := OutcomeOutput{
		Name:     o.Name,
		Status:   o.Status.String(),
		Message:  o.Message,
		Critical: o.IsCritical(),
	}
	if verbose || o.Status != preflight.StatusPass {
		out.Details = o.Details
	}
	return out
}

func guidance(sum report.Summary) string {
	switch sum.Verdict {
	case report.VerdictReady:
		return "The environment is ready for development."
	case report.VerdictUsable:
		return fmt.Sprintf("The environment works, but %d optional items are missing; review the warnings.", sum.Warn)
	}
	if sum.Aborted {
		return "Foundational tools are missing; install them and run the check again. Remaining checks were skipped."
	}
	return "Fix the failed checks, starting with the critical ones, then run the check again."
}

// Serve runs the server over stdio until ctx is cancelled or the client
// disconnects.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting MCP server", slog.String("transport", "stdio"), slog.String("root", s.root))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("MCP server stopped gracefully")
	return nil
}

// generateRequestID returns a short random id for correlating log lines.
func generateRequestID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
