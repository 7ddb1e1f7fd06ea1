package engine

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/document"
	"mercator-hq/ganymede/pkg/gcl/ast"
	"mercator-hq/ganymede/pkg/gcl/parser"
)

func compile(t *testing.T, rules string) *ast.RuleSet {
	t.Helper()
	parsed, err := parser.NewParser().ParseBytes([]byte(rules), "rules.gcl")
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}
	analyzed, errs := parser.Analyze(parsed)
	if analyzed == nil {
		t.Fatalf("analyze rules: %v", errs)
	}
	return analyzed
}

func yamlDoc(t *testing.T, text string) *document.Node {
	t.Helper()
	doc, err := document.FromYAML([]byte(text))
	if err != nil {
		t.Fatalf("parse template: %v", err)
	}
	return doc
}

const bucketRules = `
let buckets = Resources.*[ Type == "AWS::S3::Bucket" ]

rule S3_ENCRYPTION when %buckets !empty {
    %buckets.Properties.BucketEncryption exists
    <<S3 buckets must have encryption configured>>
}
`

func TestEngine_Pass(t *testing.T) {
	doc := yamlDoc(t, `
Resources:
  GoodBucket:
    Type: AWS::S3::Bucket
    Properties:
      BucketEncryption:
        Enabled: true
`)

	report, err := New(nil).Evaluate(context.Background(), compile(t, bucketRules), doc)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	result := report.Result("S3_ENCRYPTION")
	if result == nil {
		t.Fatal("no result for S3_ENCRYPTION")
	}
	if result.Verdict != VerdictPass {
		t.Errorf("verdict = %q, want PASS", result.Verdict)
	}
	if len(report.Violations) != 0 {
		t.Errorf("violations = %v, want none", report.Violations)
	}
	if report.Failed() {
		t.Error("Failed() = true on a passing report")
	}
}

func TestEngine_FailCarriesPathAndMessage(t *testing.T) {
	doc := yamlDoc(t, `
Resources:
  PlainBucket:
    Type: AWS::S3::Bucket
    Properties: {}
`)

	report, err := New(nil).Evaluate(context.Background(), compile(t, bucketRules), doc)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	result := report.Result("S3_ENCRYPTION")
	if result.Verdict != VerdictFail {
		t.Fatalf("verdict = %q, want FAIL", result.Verdict)
	}
	if len(report.Violations) != 1 {
		t.Fatalf("len(Violations) = %d, want 1", len(report.Violations))
	}

	v := report.Violations[0]
	if v.RuleName != "S3_ENCRYPTION" {
		t.Errorf("RuleName = %q", v.RuleName)
	}
	if v.Message != "S3 buckets must have encryption configured" {
		t.Errorf("Message = %q", v.Message)
	}
	if !strings.Contains(v.Path, "PlainBucket") {
		t.Errorf("Path = %q, want it to identify PlainBucket", v.Path)
	}
}

func TestEngine_TrailingMessageCoversEarlierClauseFailure(t *testing.T) {
	// A rule whose body is a group of clauses with one trailing message
	// block: when the first clause fails (encryption missing entirely),
	// the violation still carries the authored text.
	rules := `
let s3_buckets_server_side_encryption = Resources.*[ Type == 'AWS::S3::Bucket' ]

rule S3_BUCKET_SERVER_SIDE_ENCRYPTION_ENABLED when %s3_buckets_server_side_encryption !empty {
    %s3_buckets_server_side_encryption.Properties.BucketEncryption exists
    %s3_buckets_server_side_encryption.Properties.BucketEncryption.ServerSideEncryptionConfiguration[*].ServerSideEncryptionByDefault.SSEAlgorithm in ['aws:kms', 'AES256']
    <<
    Violation: S3 Bucket must enable server-side encryption.
    Fix: Set the S3 Bucket property BucketEncryption.ServerSideEncryptionConfiguration
    >>
}
`
	doc := yamlDoc(t, `
Resources:
  Good:
    Type: AWS::S3::Bucket
    Properties:
      BucketEncryption:
        ServerSideEncryptionConfiguration:
          - ServerSideEncryptionByDefault:
              SSEAlgorithm: aws:kms
  Bad:
    Type: AWS::S3::Bucket
    Properties: {}
  AlsoGood:
    Type: AWS::S3::Bucket
    Properties:
      BucketEncryption:
        ServerSideEncryptionConfiguration:
          - ServerSideEncryptionByDefault:
              SSEAlgorithm: AES256
`)

	report, err := New(nil).Evaluate(context.Background(), compile(t, rules), doc)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	result := report.Result("S3_BUCKET_SERVER_SIDE_ENCRYPTION_ENABLED")
	if result.Verdict != VerdictFail {
		t.Fatalf("verdict = %q, want FAIL", result.Verdict)
	}
	if len(report.Violations) != 1 {
		t.Fatalf("len(Violations) = %d, want 1: %v", len(report.Violations), report.Violations)
	}

	v := report.Violations[0]
	if v.Path != "Resources/Bad/Properties/BucketEncryption" {
		t.Errorf("Path = %q, want Resources/Bad/Properties/BucketEncryption", v.Path)
	}
	if !strings.Contains(v.Message, "Violation: S3 Bucket must enable server-side encryption.") {
		t.Errorf("Message = %q, want the authored violation text", v.Message)
	}
	if strings.Contains(v.Message, "Check failed:") {
		t.Errorf("Message = %q, generated text leaked into an authored message", v.Message)
	}
}

func TestEngine_GuardSkipsRule(t *testing.T) {
	// No S3 buckets at all: the guard does not hold and the rule is
	// SKIPPED, not failed - even though the encryption check would fail.
	doc := yamlDoc(t, `
Resources:
  WebServer:
    Type: AWS::EC2::Instance
`)

	report, err := New(nil).Evaluate(context.Background(), compile(t, bucketRules), doc)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	result := report.Result("S3_ENCRYPTION")
	if result.Verdict != VerdictSkipped {
		t.Errorf("verdict = %q, want SKIPPED", result.Verdict)
	}
	if len(report.Violations) != 0 {
		t.Errorf("skipped rule produced violations: %v", report.Violations)
	}
	if report.Failed() {
		t.Error("Failed() = true, skipped rules are not failures")
	}
}

func TestEngine_EmptyDocumentSkips(t *testing.T) {
	report, err := New(nil).Evaluate(context.Background(), compile(t, bucketRules), document.Mapping())
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if got := report.Result("S3_ENCRYPTION").Verdict; got != VerdictSkipped {
		t.Errorf("verdict = %q, want SKIPPED on empty document", got)
	}
}

func TestEngine_UniversalQuantification(t *testing.T) {
	// Three buckets, one missing encryption: the clause must fail even
	// though the selection over all buckets is non-empty.
	doc := yamlDoc(t, `
Resources:
  A:
    Type: AWS::S3::Bucket
    Properties:
      BucketEncryption: {Enabled: true}
  B:
    Type: AWS::S3::Bucket
    Properties: {}
  C:
    Type: AWS::S3::Bucket
    Properties:
      BucketEncryption: {Enabled: true}
`)

	report, err := New(nil).Evaluate(context.Background(), compile(t, bucketRules), doc)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	result := report.Result("S3_ENCRYPTION")
	if result.Verdict != VerdictFail {
		t.Fatalf("verdict = %q, want FAIL when any bucket lacks encryption", result.Verdict)
	}
	if len(report.Violations) != 1 {
		t.Fatalf("len(Violations) = %d, want 1", len(report.Violations))
	}
	if !strings.Contains(report.Violations[0].Path, "Resources/B") {
		t.Errorf("Path = %q, want the non-compliant bucket", report.Violations[0].Path)
	}
}

func TestEngine_EveryRuleGetsExactlyOneVerdict(t *testing.T) {
	rules := `
let buckets = Resources.*[ Type == "AWS::S3::Bucket" ]

rule ENCRYPTION when %buckets !empty {
    %buckets.Properties.BucketEncryption exists
}
rule VERSIONING when %buckets !empty {
    %buckets.Properties.VersioningConfiguration.Status == "Enabled"
}
rule NO_INSTANCES {
    Resources.*[ Type == "AWS::EC2::Instance" ] !exists
}
`
	doc := yamlDoc(t, `
Resources:
  B:
    Type: AWS::S3::Bucket
    Properties:
      BucketEncryption: {Enabled: true}
      VersioningConfiguration: {Status: Suspended}
`)

	report, err := New(nil).Evaluate(context.Background(), compile(t, rules), doc)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if len(report.Results) != 3 {
		t.Fatalf("len(Results) = %d, want 3", len(report.Results))
	}
	if got := report.Result("ENCRYPTION").Verdict; got != VerdictPass {
		t.Errorf("ENCRYPTION = %q, want PASS", got)
	}
	if got := report.Result("VERSIONING").Verdict; got != VerdictFail {
		t.Errorf("VERSIONING = %q, want FAIL", got)
	}
	if got := report.Result("NO_INSTANCES").Verdict; got != VerdictPass {
		t.Errorf("NO_INSTANCES = %q, want PASS", got)
	}

	passed, failed, skipped := report.Counts()
	if passed != 2 || failed != 1 || skipped != 0 {
		t.Errorf("Counts() = %d/%d/%d, want 2/1/0", passed, failed, skipped)
	}
}

func TestEngine_ViolationsFollowRuleThenClauseOrder(t *testing.T) {
	rules := `
rule FIRST {
    Missing.One exists
    Missing.Two exists
}
rule SECOND {
    Missing.Three exists
}
`
	doc := yamlDoc(t, "Resources: {}")

	report, err := New(nil).Evaluate(context.Background(), compile(t, rules), doc)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if len(report.Violations) != 3 {
		t.Fatalf("len(Violations) = %d, want 3", len(report.Violations))
	}
	wantPaths := []string{"Missing/One", "Missing/Two", "Missing/Three"}
	for i, want := range wantPaths {
		if report.Violations[i].Path != want {
			t.Errorf("Violations[%d].Path = %q, want %q", i, report.Violations[i].Path, want)
		}
	}
}

func TestEngine_DefaultMessageWhenNoneAuthored(t *testing.T) {
	rules := `
rule R {
    Resources.Thing exists
}
`
	report, err := New(nil).Evaluate(context.Background(), compile(t, rules), yamlDoc(t, "{}"))
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if len(report.Violations) != 1 {
		t.Fatalf("len(Violations) = %d, want 1", len(report.Violations))
	}
	msg := report.Violations[0].Message
	if !strings.Contains(msg, "Resources.Thing") || !strings.Contains(msg, "exists") {
		t.Errorf("default message = %q, want it to describe the failed check", msg)
	}
}

func TestEngine_RuleLocalLets(t *testing.T) {
	rules := `
let buckets = Resources.*[ Type == "AWS::S3::Bucket" ]

rule VERSIONING when %buckets !empty {
    let status = %buckets.Properties.VersioningConfiguration.Status
    %status exists
    %status == "Enabled"
}
`
	doc := yamlDoc(t, `
Resources:
  B:
    Type: AWS::S3::Bucket
    Properties:
      VersioningConfiguration: {Status: Enabled}
`)

	report, err := New(nil).Evaluate(context.Background(), compile(t, rules), doc)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if got := report.Result("VERSIONING").Verdict; got != VerdictPass {
		t.Errorf("verdict = %q, want PASS", got)
	}
}

func TestEngine_MissingPropertyAssertedWithExistsFails(t *testing.T) {
	// Equality over an absent value holds vacuously; the paired exists
	// clause is what catches the absence.
	rules := `
rule R {
    Resources.B.Properties.Status == "Enabled"
}
rule R_STRICT {
    Resources.B.Properties.Status exists
    Resources.B.Properties.Status == "Enabled"
}
`
	doc := yamlDoc(t, "Resources: {B: {Properties: {}}}")

	report, err := New(nil).Evaluate(context.Background(), compile(t, rules), doc)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if got := report.Result("R").Verdict; got != VerdictPass {
		t.Errorf("R = %q, want vacuous PASS", got)
	}
	if got := report.Result("R_STRICT").Verdict; got != VerdictFail {
		t.Errorf("R_STRICT = %q, want FAIL", got)
	}
}

func TestEngine_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Evaluate(ctx, compile(t, bucketRules), document.Mapping())
	if err == nil {
		t.Fatal("Evaluate() succeeded with cancelled context")
	}
}

type captureMetrics struct {
	mu          sync.Mutex
	evaluations map[string]Verdict
	violations  map[string]int
}

func (m *captureMetrics) RecordRuleEvaluation(rule string, verdict Verdict, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluations[rule] = verdict
}

func (m *captureMetrics) RecordViolations(rule string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.violations[rule] = count
}

func TestEngine_MetricsRecorder(t *testing.T) {
	metrics := &captureMetrics{
		evaluations: make(map[string]Verdict),
		violations:  make(map[string]int),
	}

	doc := yamlDoc(t, `
Resources:
  B:
    Type: AWS::S3::Bucket
    Properties: {}
`)

	_, err := New(nil).WithMetrics(metrics).Evaluate(context.Background(), compile(t, bucketRules), doc)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if metrics.evaluations["S3_ENCRYPTION"] != VerdictFail {
		t.Errorf("recorded verdict = %q, want FAIL", metrics.evaluations["S3_ENCRYPTION"])
	}
	if metrics.violations["S3_ENCRYPTION"] != 1 {
		t.Errorf("recorded violations = %d, want 1", metrics.violations["S3_ENCRYPTION"])
	}
}

func TestEngine_ConcurrentEvaluations(t *testing.T) {
	ruleSet := compile(t, bucketRules)
	eng := New(nil)

	docs := []*document.Node{
		yamlDoc(t, "Resources: {B: {Type: AWS::S3::Bucket, Properties: {BucketEncryption: {Enabled: true}}}}"),
		yamlDoc(t, "Resources: {B: {Type: AWS::S3::Bucket, Properties: {}}}"),
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc := docs[i%2]
			report, err := eng.Evaluate(context.Background(), ruleSet, doc)
			if err != nil {
				t.Errorf("Evaluate() failed: %v", err)
				return
			}
			wantFail := i%2 == 1
			if report.Failed() != wantFail {
				t.Errorf("Failed() = %v, want %v", report.Failed(), wantFail)
			}
		}(i)
	}
	wg.Wait()
}
