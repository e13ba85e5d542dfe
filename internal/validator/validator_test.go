package validator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/darwinyusef/termsim/internal/vfs"
	"github.com/darwinyusef/termsim/pkg/termsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAI struct {
	mu       sync.Mutex
	requests []termsim.AIRequest
	resp     *termsim.AIResponse
	err      error
	block    bool
}

func (f *fakeAI) Validate(ctx context.Context, req termsim.AIRequest) (*termsim.AIResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.resp, f.err
}

func (f *fakeAI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func step(spec termsim.ValidationSpec) termsim.Step {
	return termsim.Step{Points: 10, Validation: spec}
}

func ptr(f float64) *float64 { return &f }

func TestCommandExact(t *testing.T) {
	v := New(nil)
	fs := vfs.New()
	env := termsim.DefaultEnvironment()
	s := step(termsim.ValidationSpec{
		Type:                termsim.ValidationCommandExact,
		ExpectedCommand:     "mkdir projects",
		AlternativeCommands: []string{"install -d projects"},
	})

	tests := []struct {
		command string
		correct bool
	}{
		{"mkdir projects", true},
		{"mkdir anything -p", true},
		{"  mkdir   projects ", true},
		{"install -d x", true},
		{"ls", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			res := v.Validate(context.Background(), tt.command, s, fs, env)
			assert.Equal(t, tt.correct, res.Correct)
			if !tt.correct {
				assert.Equal(t, "Expected: mkdir projects", res.Feedback)
			} else {
				assert.Empty(t, res.Feedback)
			}
		})
	}
}

func TestCommandPattern(t *testing.T) {
	v := New(nil)
	fs := vfs.New()
	s := step(termsim.ValidationSpec{Type: termsim.ValidationCommandPattern, Pattern: `^ls\s+-l`})

	assert.True(t, v.Validate(context.Background(), "ls -la", s, fs, nil).Correct)

	res := v.Validate(context.Background(), "ls", s, fs, nil)
	assert.False(t, res.Correct)
	assert.Equal(t, `Command should match pattern: ^ls\s+-l`, res.Feedback)

	bad := step(termsim.ValidationSpec{Type: termsim.ValidationCommandPattern, Pattern: "("})
	res = v.Validate(context.Background(), "ls", bad, fs, nil)
	assert.False(t, res.Correct)
	assert.Contains(t, res.Feedback, "Invalid validation pattern")
}

func TestCommandWithFSCheck(t *testing.T) {
	v := New(nil)
	fs := vfs.New()
	s := step(termsim.ValidationSpec{
		Type:            termsim.ValidationCommandWithFS,
		ExpectedCommand: "touch projects/readme.txt",
		FSChecks: []termsim.FSCheck{
			{Type: termsim.FSCheckDirectoryExists, Path: "/home/student/projects"},
			{Type: termsim.FSCheckFileExists, Path: "/home/student/projects/readme.txt"},
			{Type: termsim.FSCheckFileNotExists, Path: "/home/student/old.txt"},
		},
	})
	ctx := context.Background()

	res := v.Validate(ctx, "ls", s, fs, nil)
	assert.Equal(t, "Expected: touch projects/readme.txt", res.Feedback)

	res = v.Validate(ctx, "touch projects/readme.txt", s, fs, nil)
	assert.False(t, res.Correct)
	assert.Equal(t, "Directory /home/student/projects should exist", res.Feedback)

	require.NoError(t, fs.CreateDirectory("projects"))
	res = v.Validate(ctx, "touch projects/readme.txt", s, fs, nil)
	assert.Equal(t, "File /home/student/projects/readme.txt should exist", res.Feedback)

	require.NoError(t, fs.Touch("projects/readme.txt"))
	require.NoError(t, fs.Touch("old.txt"))
	res = v.Validate(ctx, "touch projects/readme.txt", s, fs, nil)
	assert.Equal(t, "File /home/student/old.txt should not exist", res.Feedback)

	require.NoError(t, fs.Remove("old.txt", false))
	res = v.Validate(ctx, "touch projects/readme.txt", s, fs, nil)
	assert.True(t, res.Correct)
}

func TestStateCheck(t *testing.T) {
	v := New(nil)
	fs := vfs.New()
	env := termsim.DefaultEnvironment()
	s := step(termsim.ValidationSpec{
		Type: termsim.ValidationStateCheck,
		Checks: []termsim.StateCheck{
			{Type: termsim.StateCheckCurrentDirectory, Value: "/tmp"},
			{Type: termsim.StateCheckEnvVar, Name: "EDITOR", Value: "nano"},
		},
	})
	ctx := context.Background()

	res := v.Validate(ctx, "cd /tmp", s, fs, env)
	assert.Equal(t, "Current directory should be /tmp", res.Feedback)

	require.NoError(t, fs.ChangeDirectory("/tmp"))
	res = v.Validate(ctx, "cd /tmp", s, fs, env)
	assert.Equal(t, "Environment variable EDITOR should be nano", res.Feedback)

	env["EDITOR"] = "nano"
	assert.True(t, v.Validate(ctx, "cd /tmp", s, fs, env).Correct)
}

func TestStateCheck_UnsetVariableNeverMatchesEmpty(t *testing.T) {
	v := New(nil)
	s := step(termsim.ValidationSpec{
		Type:   termsim.ValidationStateCheck,
		Checks: []termsim.StateCheck{{Type: termsim.StateCheckEnvVar, Name: "EMPTY", Value: ""}},
	})
	res := v.Validate(context.Background(), "x", s, vfs.New(), termsim.Environment{})
	assert.False(t, res.Correct)

	res = v.Validate(context.Background(), "x", s, vfs.New(), termsim.Environment{"EMPTY": ""})
	assert.True(t, res.Correct)
}

func TestFileContentCheck(t *testing.T) {
	v := New(nil)
	fs := vfs.New()
	ctx := context.Background()

	byPattern := step(termsim.ValidationSpec{Type: termsim.ValidationFileContentCheck, FilePath: "app.conf", Pattern: `port\s*=\s*\d+`})
	byContains := step(termsim.ValidationSpec{Type: termsim.ValidationFileContentCheck, FilePath: "app.conf", Contains: "debug"})
	anyContent := step(termsim.ValidationSpec{Type: termsim.ValidationFileContentCheck, FilePath: "app.conf"})

	res := v.Validate(ctx, "cat app.conf", byPattern, fs, nil)
	assert.False(t, res.Correct)
	assert.Equal(t, "cat: app.conf: No such file or directory", res.Feedback)

	require.NoError(t, fs.WriteFile("app.conf", "name = demo\n", vfs.ModeOverwrite))
	assert.Equal(t, `File content should match pattern: port\s*=\s*\d+`, v.Validate(ctx, "", byPattern, fs, nil).Feedback)
	assert.Equal(t, "File should contain: debug", v.Validate(ctx, "", byContains, fs, nil).Feedback)
	assert.True(t, v.Validate(ctx, "", anyContent, fs, nil).Correct)

	require.NoError(t, fs.WriteFile("app.conf", "port = 8080\ndebug = true\n", vfs.ModeOverwrite))
	assert.True(t, v.Validate(ctx, "", byPattern, fs, nil).Correct)
	assert.True(t, v.Validate(ctx, "", byContains, fs, nil).Correct)
}

func TestUnknownType(t *testing.T) {
	res := New(nil).Validate(context.Background(), "ls", step(termsim.ValidationSpec{Type: "telepathy"}), vfs.New(), nil)
	assert.False(t, res.Correct)
	assert.Equal(t, "Unknown validation type: telepathy", res.Feedback)
}

func TestLocalStrategiesNeverCallAI(t *testing.T) {
	ai := &fakeAI{resp: &termsim.AIResponse{Correct: true}}
	v := New(ai)
	fs := vfs.New()
	for _, kind := range termsim.ValidationKinds() {
		if kind.UsesAI() {
			continue
		}
		v.Validate(context.Background(), "ls", step(termsim.ValidationSpec{Type: kind, ExpectedCommand: "ls"}), fs, termsim.DefaultEnvironment())
	}
	assert.Zero(t, ai.calls())
}

func TestAIValidation_FileContent(t *testing.T) {
	ai := &fakeAI{resp: &termsim.AIResponse{Correct: true, Feedback: "Looks good"}}
	v := New(ai)
	fs := vfs.New()
	s := step(termsim.ValidationSpec{Type: termsim.ValidationAI, FilePath: "Dockerfile", AIPrompt: "Check FROM"})

	res := v.Validate(context.Background(), "nano Dockerfile", s, fs, nil)
	assert.False(t, res.Correct)
	assert.Equal(t, "File Dockerfile not found. Please create the file first.", res.Feedback)
	assert.Zero(t, ai.calls())

	require.NoError(t, fs.WriteFile("Dockerfile", "FROM alpine", vfs.ModeOverwrite))
	res = v.Validate(context.Background(), "nano Dockerfile", s, fs, nil)
	assert.True(t, res.Correct)
	assert.Equal(t, "Looks good", res.Feedback)
	require.NotNil(t, res.Score)
	assert.Equal(t, 0.0, *res.Score)

	require.Equal(t, 1, ai.calls())
	req := ai.requests[0]
	assert.Equal(t, "FROM alpine", req.Command)
	assert.Equal(t, "Check FROM", req.Expected)
	assert.Equal(t, "dockerfile", req.Context["type"])
	assert.Equal(t, "Dockerfile", req.Context["file_path"])
}

func TestAIValidation_RawCommandAndDefaultPrompt(t *testing.T) {
	ai := &fakeAI{resp: &termsim.AIResponse{Correct: false, Feedback: "no", Score: ptr(40)}}
	v := New(ai)
	s := step(termsim.ValidationSpec{Type: termsim.ValidationAI, Context: map[string]any{"exercise": "Linux"}})

	res := v.Validate(context.Background(), "docker build .", s, vfs.New(), nil)
	assert.False(t, res.Correct)
	assert.Equal(t, 40.0, *res.Score)

	req := ai.requests[0]
	assert.Equal(t, "docker build .", req.Command)
	assert.Equal(t, "Validate this content", req.Expected)
	assert.Equal(t, "Linux", req.Context["exercise"])
	_, hasPath := req.Context["file_path"]
	assert.False(t, hasPath)
}

func TestAIValidation_ServiceError(t *testing.T) {
	v := New(&fakeAI{err: errors.New("503 service unavailable")})
	res := v.Validate(context.Background(), "x", step(termsim.ValidationSpec{Type: termsim.ValidationAI}), vfs.New(), nil)
	assert.False(t, res.Correct)
	assert.Equal(t, "AI validation failed: 503 service unavailable", res.Feedback)
	assert.Nil(t, res.Score)
}

func TestAIValidation_Timeout(t *testing.T) {
	v := New(&fakeAI{block: true}, WithTimeout(20*time.Millisecond))
	res := v.Validate(context.Background(), "x", step(termsim.ValidationSpec{Type: termsim.ValidationComplexAI}), vfs.New(), nil)
	assert.False(t, res.Correct)
	assert.Equal(t, "AI validation failed: timed out after 20ms", res.Feedback)
}

func TestAIValidation_CallerDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	v := New(&fakeAI{block: true}, WithTimeout(time.Hour))
	res := v.Validate(ctx, "x", step(termsim.ValidationSpec{Type: termsim.ValidationAI}), vfs.New(), nil)
	assert.False(t, res.Correct)
	assert.Equal(t, "AI validation failed: context deadline exceeded", res.Feedback)
}

func TestAIValidation_NoService(t *testing.T) {
	res := New(nil).Validate(context.Background(), "x", step(termsim.ValidationSpec{Type: termsim.ValidationAI}), vfs.New(), nil)
	assert.False(t, res.Correct)
	assert.Contains(t, res.Feedback, "AI validation failed")
}

func TestComplexAI_BundlesState(t *testing.T) {
	ai := &fakeAI{resp: &termsim.AIResponse{Correct: true, Feedback: "ok"}}
	v := New(ai)
	fs := vfs.New()
	require.NoError(t, fs.CreateDirectory("app"))
	env := termsim.DefaultEnvironment()
	s := step(termsim.ValidationSpec{
		Type:             termsim.ValidationComplexAI,
		ExpectedBehavior: "creates an app directory",
		Context:          map[string]any{"level": "beginner"},
	})

	res := v.Validate(context.Background(), "mkdir app", s, fs, env)
	assert.True(t, res.Correct)
	assert.Nil(t, res.Score)

	req := ai.requests[0]
	assert.Equal(t, "mkdir app", req.Command)
	assert.Equal(t, "creates an app directory", req.Expected)
	assert.Equal(t, "mkdir app", req.Context["command"])
	assert.Equal(t, "beginner", req.Context["level"])

	snap, ok := req.Context["filesystem"].(termsim.Snapshot)
	require.True(t, ok)
	assert.Equal(t, "/home/student", snap.CurrentPath)
	_, hasApp := snap.Root.Children["home"].Children["student"].Children["app"]
	assert.True(t, hasApp)

	sentEnv, ok := req.Context["env"].(termsim.Environment)
	require.True(t, ok)
	sentEnv["USER"] = "mutated"
	assert.Equal(t, "student", env["USER"])
}

type countingObserver struct {
	kinds   []termsim.ValidationKind
	results []bool
}

func (c *countingObserver) ValidationCompleted(kind termsim.ValidationKind, correct bool, _ time.Duration) {
	c.kinds = append(c.kinds, kind)
	c.results = append(c.results, correct)
}

func TestObserver(t *testing.T) {
	obs := &countingObserver{}
	v := New(nil, WithObserver(obs))
	v.Validate(context.Background(), "ls", step(termsim.ValidationSpec{Type: termsim.ValidationCommandExact, ExpectedCommand: "ls"}), vfs.New(), nil)
	assert.Equal(t, []termsim.ValidationKind{termsim.ValidationCommandExact}, obs.kinds)
	assert.Equal(t, []bool{true}, obs.results)
}
