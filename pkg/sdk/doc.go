// Package insighthire embeds the resume search engine in a Go program,
// backed by Redis Stack (RedisJSON) and an OpenAI-compatible embedder.
//
// # Ranking only
//
// Rank orders caller-supplied resumes by cosine similarity to a query and
// touches no storage:
//
//	client, _ := insighthire.New(ctx,
//	    insighthire.WithRedis("localhost:6379", ""),
//	    insighthire.WithEmbedder(myEmbedder),
//	)
//	res, _ := client.Rank(ctx, "senior Go engineer", resumes)
//	for _, r := range res.Ranked {
//	    fmt.Println(r.ID, r.Score)
//	}
//
// # Stored resumes
//
//	_, _ = client.UpsertResumes(ctx, resumes)
//	found, _ := client.Search(ctx, "data engineer with Spark")
//	_ = client.SaveCandidate(ctx, found.JobID, found.Matches[0].ID)
package insighthire
