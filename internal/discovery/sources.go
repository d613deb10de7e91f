package discovery

// Source is one RSS or Atom feed to discover articles from.
type Source struct {
	Name  string `json:"name" yaml:"name" validate:"required"`
	URL   string `json:"url" yaml:"url" validate:"required,url"`
	Topic string `json:"topic,omitempty" yaml:"topic"`
}

// DefaultSources are the AI and technology news feeds searched when no list is configured.
var DefaultSources = []Source{
	{Name: "MIT Technology Review AI", URL: "https://www.technologyreview.com/topnews.rss?section=artificial-intelligence", Topic: "AI"},
	{Name: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/technology-lab", Topic: "Technology"},
	{Name: "TechCrunch AI", URL: "https://techcrunch.com/category/artificial-intelligence/feed/", Topic: "AI"},
	{Name: "VentureBeat AI", URL: "https://venturebeat.com/category/ai/feed/", Topic: "AI"},
	{Name: "AI News", URL: "https://www.artificialintelligence-news.com/feed/", Topic: "AI"},
	{Name: "Towards Data Science", URL: "https://towardsdatascience.com/feed", Topic: "Data Science"},
	{Name: "Wired", URL: "https://www.wired.com/feed/rss", Topic: "Technology"},
	{Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml", Topic: "Technology"},
	{Name: "Nature AI", URL: "https://www.nature.com/subjects/machine-learning.rss", Topic: "Research"},
	{Name: "Science Daily AI", URL: "https://www.sciencedaily.com/rss/computers_math/artificial_intelligence.xml", Topic: "Research"},
	{Name: "Fast Company", URL: "https://www.fastcompany.com/technology/rss", Topic: "Business"},
	{Name: "Harvard Business Review Technology", URL: "https://hbr.org/feed/technology-innovation", Topic: "Business"},
	{Name: "arXiv AI", URL: "https://export.arxiv.org/api/query?search_query=cat:cs.AI+OR+cat:cs.LG+OR+cat:cs.CL&sortBy=submittedDate&sortOrder=descending&max_results=10", Topic: "Research"},
	{Name: "Machine Learning Mastery", URL: "https://machinelearningmastery.com/feed/", Topic: "Technical"},
	{Name: "KDnuggets", URL: "https://www.kdnuggets.com/feed", Topic: "Data Science"},
	{Name: "The Gradient", URL: "https://thegradient.pub/rss/", Topic: "Research"},
	{Name: "DeepLearning.AI", URL: "https://www.deeplearning.ai/feed/", Topic: "Technical"},
}
