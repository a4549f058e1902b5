package textproc

// Vocabulary holds the word lists used by the normalizer and the keyword extractor.
// A Vocabulary must not be modified after it is handed to a Normalizer.
type Vocabulary struct {
	StopWords map[string]struct{}
	TechTerms map[string]struct{}
}

// NewVocabulary builds a Vocabulary from plain word lists.
func NewVocabulary(stopWords, techTerms []string) Vocabulary {
	return Vocabulary{
		StopWords: toSet(stopWords),
		TechTerms: toSet(techTerms),
	}
}

// DefaultVocabulary returns the English stop words and the built-in technical term dictionary.
func DefaultVocabulary() Vocabulary {
	return NewVocabulary(englishStopWords, techTerms)
}

// IsStopWord reports whether the token is a stop word.
func (v Vocabulary) IsStopWord(token string) bool {
	_, ok := v.StopWords[token]
	return ok
}

// IsTechTerm reports whether the token is in the technical term dictionary.
func (v Vocabulary) IsTechTerm(token string) bool {
	_, ok := v.TechTerms[token]
	return ok
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

var englishStopWords = []string{
	"a", "about", "above", "after", "again", "against", "ain", "all", "also", "am",
	"an", "and", "any", "are", "aren", "as", "at", "be", "because", "been",
	"before", "being", "below", "between", "both", "but", "by", "can", "could", "couldn",
	"d", "did", "didn", "do", "does", "doesn", "doing", "don", "down", "during",
	"each", "either", "else", "etc", "ever", "every", "few", "for", "from", "further",
	"get", "gets", "got", "had", "hadn", "has", "hasn", "have", "haven", "having",
	"he", "her", "here", "hers", "herself", "him", "himself", "his", "how", "however",
	"i", "if", "in", "into", "is", "isn", "it", "its", "itself", "just",
	"let", "like", "ll", "m", "ma", "may", "me", "might", "mightn", "more",
	"most", "must", "mustn", "my", "myself", "needn", "neither", "no", "nor", "not",
	"now", "o", "of", "off", "often", "on", "once", "only", "or", "other",
	"our", "ours", "ourselves", "out", "over", "own", "per", "please", "re", "s",
	"same", "shall", "shan", "she", "should", "shouldn", "since", "so", "some", "such",
	"t", "than", "that", "the", "their", "theirs", "them", "themselves", "then", "there",
	"these", "they", "this", "those", "though", "through", "thus", "to", "too", "under",
	"until", "up", "upon", "us", "ve", "very", "via", "was", "wasn", "we",
	"well", "were", "weren", "what", "when", "where", "whether", "which", "while", "who",
	"whom", "whose", "why", "will", "with", "within", "without", "won", "would", "wouldn",
	"y", "yet", "you", "your", "yours", "yourself", "yourselves", "able", "across", "along",
}

var techTerms = []string{
	"javascript", "typescript", "python", "java", "golang", "rust", "react", "angular",
	"vue", "node", "nodejs", "sql", "nosql", "postgresql", "mysql", "mongodb",
	"redis", "kafka", "aws", "azure", "gcp", "docker", "kubernetes", "terraform",
	"git", "api", "rest", "graphql", "html", "css", "linux", "agile",
	"scrum", "devops", "cicd", "microservices", "cloud",
}
