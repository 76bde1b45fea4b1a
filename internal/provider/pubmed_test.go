// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhprogram/evidence-engine/pkg/types"
)

const pubmedSearchFixture = `{"esearchresult": {"idlist": ["36548101"]}}`

const pubmedFetchFixture = `<?xml version="1.0" ?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>36548101</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate><Year>2022</Year></PubDate>
          </JournalIssue>
          <Title>JAMA Psychiatry</Title>
        </Journal>
        <ArticleTitle>School-Based Anxiety Prevention Programs</ArticleTitle>
        <Abstract>
          <AbstractText>Importance: anxiety is common.</AbstractText>
          <AbstractText>Findings: programs reduced symptoms.</AbstractText>
        </Abstract>
        <AuthorList>
          <Author><LastName>Nightingale</LastName><ForeName>Florence</ForeName></Author>
        </AuthorList>
        <PublicationTypeList>
          <PublicationType>Journal Article</PublicationType>
          <PublicationType>Randomized Controlled Trial</PublicationType>
        </PublicationTypeList>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func pubmedTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/esearch", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pubmed", r.URL.Query().Get("db"))
		w.Write([]byte(pubmedSearchFixture))
	})
	mux.HandleFunc("/efetch", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "36548101", r.URL.Query().Get("id"))
		w.Write([]byte(pubmedFetchFixture))
	})
	return httptest.NewServer(mux)
}

func TestPubMedSearch(t *testing.T) {
	ts := pubmedTestServer(t)
	defer ts.Close()

	origSearch, origFetch := pubmedSearchBase, pubmedFetchBase
	pubmedSearchBase = ts.URL + "/esearch"
	pubmedFetchBase = ts.URL + "/efetch"
	defer func() { pubmedSearchBase, pubmedFetchBase = origSearch, origFetch }()

	p := &PubMed{Client: ts.Client(), Limiter: testLimiter()}
	records, err := p.Search(context.Background(), "anxiety prevention school", testCfg())
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "School-Based Anxiety Prevention Programs", r.Title)
	assert.Equal(t, []string{"Florence Nightingale"}, r.Authors)
	assert.Equal(t, "JAMA Psychiatry", r.Venue)
	assert.Equal(t, 2022, r.Year)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/36548101/", r.URL)
	assert.Equal(t, "Importance: anxiety is common. Findings: programs reduced symptoms.", r.Abstract)
	assert.Equal(t, types.StudyRCT, r.StudyType)
	assert.Equal(t, types.ProviderPubMed, r.Source)
}

func TestPubMedSearchNoIDs(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"esearchresult": {"idlist": []}}`))
	}))
	defer ts.Close()

	orig := pubmedSearchBase
	pubmedSearchBase = ts.URL
	defer func() { pubmedSearchBase = orig }()

	p := &PubMed{Client: ts.Client(), Limiter: testLimiter()}
	records, err := p.Search(context.Background(), "zzznonexistentqueryxyz", testCfg())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStudyTypeFromPublicationTypes(t *testing.T) {
	tests := []struct {
		name     string
		pubTypes []string
		want     types.StudyType
	}{
		{"meta-analysis", []string{"Journal Article", "Meta-Analysis"}, types.StudyMetaAnalysis},
		{"systematic review", []string{"Systematic Review"}, types.StudySystematicReview},
		{"plain article", []string{"Journal Article"}, types.StudyUnknown},
		{"none", nil, types.StudyUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, studyTypeFromPublicationTypes(tt.pubTypes))
		})
	}
}
