// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// This package implements ai.AIProvider with the langchaingo library. The
// embedder and the criteria extractor may point at different hosts, for
// example a local Ollama for embeddings and Groq for extraction:
//
//	config := ai.NewConfig(
//	    ai.WithEmbeddingHost("http://localhost:11434"), // /v1 added automatically
//	    ai.WithEmbeddingModel("all-minilm"),
//	    ai.WithClassifierHost("https://api.groq.com/openai/v1"),
//	    ai.WithClassifierModel("llama3-8b-8192"),
//	    ai.WithClassifierToken(os.Getenv("GROQ_API_KEY")),
//	    ai.WithRequestsPerSecond(0.5),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "cloud computing")
//	criteria, err := provider.CriteriaExtractor().ExtractCriteria(ctx, "Find experts who worked at Google")
package openai
