package dedup

import "fmt"

// ClusterDocuments unions every above-threshold pair and converts the
// resulting components into clusters. Cluster type comes from the average
// pairwise similarity inside the component; the centroid is the mean-pooled
// member embedding.
func ClusterDocuments(embeddings []DocumentEmbedding, pairs []SimilarPair, cfg Config) ([]DocumentCluster, error) {
	if len(embeddings) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(embeddings))
	for i, e := range embeddings {
		index[e.DocumentID] = i
	}

	uf := newUnionFind(len(embeddings))
	for _, p := range pairs {
		a, okA := index[p.DocumentA]
		b, okB := index[p.DocumentB]
		if !okA || !okB {
			return nil, &StageError{Stage: StageClustering,
				Err: fmt.Errorf("pair references unknown document %s/%s", p.DocumentA, p.DocumentB)}
		}
		if p.Similarity >= cfg.SimilarityThreshold {
			uf.union(a, b)
		}
	}

	var clusters []DocumentCluster
	for n, members := range uf.components() {
		cluster := DocumentCluster{
			ClusterID: fmt.Sprintf("cluster_%d", n),
		}
		vectors := make([][]float32, 0, len(members))
		for _, m := range members {
			cluster.DocumentIDs = append(cluster.DocumentIDs, embeddings[m].DocumentID)
			vectors = append(vectors, embeddings[m].Embedding)
		}
		cluster.Centroid = MeanPool(vectors)

		if len(members) == 1 {
			cluster.Type = ClusterSingleton
			cluster.AvgInternalSimilarity = 1.0
			cluster.MinInternalSimilarity = 1.0
		} else {
			avg, min, err := internalSimilarity(vectors)
			if err != nil {
				return nil, &StageError{Stage: StageClustering, Err: err}
			}
			cluster.AvgInternalSimilarity = avg
			cluster.MinInternalSimilarity = min
			switch {
			case avg >= cfg.NearDuplicateThreshold:
				cluster.Type = ClusterDuplicateGroup
			case avg >= cfg.SimilarityThreshold:
				cluster.Type = ClusterSimilarGroup
			default:
				cluster.Type = ClusterTopicGroup
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters, nil
}

// internalSimilarity returns the average and minimum pairwise cosine
// similarity across the member vectors.
func internalSimilarity(vectors [][]float32) (avg, min float64, err error) {
	min = 1.0
	sum, n := 0.0, 0
	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			sim, err := CosineSimilarity(vectors[i], vectors[j])
			if err != nil {
				return 0, 0, err
			}
			sum += sim
			n++
			if sim < min {
				min = sim
			}
		}
	}
	if n == 0 {
		return 1.0, 1.0, nil
	}
	return sum / float64(n), min, nil
}
