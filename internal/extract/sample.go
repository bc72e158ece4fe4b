package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mrojasb/jobs-radar/internal/posting"
)

// sampleTemplate is one deterministic synthetic posting shape.
type sampleTemplate struct {
	title       string
	company     string
	description string
}

// sampleTemplates parametrize the synthetic fallback. The %s slots receive
// the query term.
var sampleTemplates = []sampleTemplate{
	{
		title:       "%s Engineer",
		company:     "TechChile SpA",
		description: "Buscamos %s Engineer para trabajar con AWS, Docker, Kubernetes. Trabajo remoto disponible. Experiencia con CI/CD, terraform y monitoring.",
	},
	{
		title:       "Senior %s Specialist",
		company:     "Innovación Digital",
		description: "Posición senior en %s con experiencia en CI/CD, terraform, monitoring. Stack: AWS, Docker, Kubernetes, Jenkins.",
	},
	{
		title:       "Cloud %s Engineer",
		company:     "StartupTech Chile",
		description: "%s para proyectos cloud-native, microservicios, Azure/AWS. Conocimientos en containerización y orquestación.",
	},
	{
		title:       "Infrastructure Engineer",
		company:     "Banco Digital",
		description: "Ingeniero de infraestructura con enfoque %s, seguridad y compliance. Experiencia en entornos financieros.",
	},
	{
		title:       "SRE - Site Reliability Engineer",
		company:     "E-commerce Chile",
		description: "SRE para plataforma de e-commerce, alta disponibilidad, monitoreo. Stack: Kubernetes, Prometheus, Grafana.",
	},
	{
		title:       "Platform Engineer",
		company:     "FinTech Startup",
		description: "Platform Engineer para infraestructura cloud, automatización y deployment. Trabajo 100% remoto.",
	},
	{
		title:       "Cloud Operations Engineer",
		company:     "TechCorp Chile",
		description: "Operations Engineer especializado en cloud, AWS/Azure, terraform, automatización de procesos.",
	},
}

// seniorityCycle staggers seniority levels across the sample batch.
var seniorityCycle = []string{"Junior", "Mid Level", "Senior"}

// SampleStrategy is the terminal fallback: deterministic-shape sample
// postings parametrized by the query. It never fails, which is what lets the
// chain guarantee a batch to its caller during outages and offline runs.
type SampleStrategy struct {
	// Now is injectable so repeated runs can share a synthetic seed in tests.
	Now func() time.Time
}

// NewSampleStrategy constructs the fallback with the wall clock.
func NewSampleStrategy() *SampleStrategy {
	return &SampleStrategy{Now: time.Now}
}

func (s *SampleStrategy) Name() string { return "sample" }

// Extract implements Strategy. It is bounded by MaxResults and the template
// count, whichever is smaller.
func (s *SampleStrategy) Extract(_ context.Context, params Params) ([]posting.RawRecord, error) {
	now := s.Now().UTC()

	n := len(sampleTemplates)
	if params.MaxResults > 0 && params.MaxResults < n {
		n = params.MaxResults
	}

	records := make([]posting.RawRecord, 0, n)
	for i := 0; i < n; i++ {
		tpl := sampleTemplates[i]
		records = append(records, &posting.SyntheticRecord{
			Title:          sprintfTerm(tpl.title, params.Term),
			Company:        tpl.company,
			Location:       params.Location,
			Description:    sprintfTerm(tpl.description, params.Term),
			SeniorityLevel: seniorityCycle[i%len(seniorityCycle)],
			PostedAt:       now.AddDate(0, 0, -(i % 7)),
		})
	}
	return records, nil
}

// sprintfTerm fills the optional term slot in a template string.
func sprintfTerm(tpl, term string) string {
	if term == "" {
		term = "DevOps"
	}
	if !strings.Contains(tpl, "%s") {
		return tpl
	}
	return fmt.Sprintf(tpl, term)
}
