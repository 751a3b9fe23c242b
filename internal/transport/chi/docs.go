package chi

const apiDocs = `InsightHire Query API

POST /search
{
    "query": string
}
(or POST /search?query=...)

Returns:
{
    "job_id": "0b6f5f0e-6c1e-4c3e-9c39-6a3f4a0a8f11",
    "title": "Software Engineer",
    "mode": "math",
    "results": [
        {
            "_id": "19",
            "full_name": "Aryan Vinod Keluskar",
            "finalScore": 0.33333333333333337,
            "data": {
                "_id": "19",
                "full_name": "Aryan Vinod Keluskar",
                "current_role": "Undergraduate Researcher at Data Mining and Machine Learning Lab",
                "skills": ["Java", "C++", "Python", "JavaScript", "SQL"],
                "summary": "Highly analytical and skilled student ...",
                "location": "Chandler, AZ, USA",
                "student": true,
                "graduation_date": "05/2026"
            }
        }, ...
    ],
    "skipped": [{"_id": "7", "reason": "dimension_mismatch"}]
}

POST /save_person_for_job
{
    "job_id": string,
    "person_id": string
}

Returns:
{
    "status": "success",
    "message": "Person added to job."
}

GET /jobs/{id}          stored search session
GET /filters            filter catalogue
POST /get_more_results  not implemented (501)
GET /health             component health
GET /metrics            Prometheus metrics
`
