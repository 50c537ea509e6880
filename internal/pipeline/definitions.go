package pipeline

// Pipeline names.
const (
	NameDev   = "dev"
	NameBuild = "build"
)

// TaskSet holds the tasks the pipeline definitions schedule. Watch is only
// needed by the dev pipeline and ThirdPartyCopy, Markup, Images, Fonts and
// Clean only by the build pipeline.
type TaskSet struct {
	Style          Task
	Script         Task
	ThirdPartyCopy Task
	Markup         Task
	Images         Task
	Fonts          Task
	CacheBust      Task
	Clean          Task
	Watch          Task
}

// Dev compiles in dev mode, busts caches and then serves and watches until cancelled.
func Dev(ts TaskSet) Pipeline {
	return Pipeline{
		Name: NameDev,
		Stages: []Stage{
			Group(StageCompileDev, ts.Style, ts.Script),
			Group(StageCacheBust, ts.CacheBust),
			Group(StageWatch, ts.Watch),
		},
	}
}

// Build refreshes the dev tree, switches to build mode, wipes dist and
// produces the distribution tree.
func Build(ts TaskSet) Pipeline {
	return Pipeline{
		Name: NameBuild,
		Stages: []Stage{
			Group(StageCompileDev, ts.Style, ts.Script),
			Group(StageCacheBust, ts.CacheBust),
			SetBuildState(),
			Group(StageClean, ts.Clean),
			Group(StageCompileBuild, ts.Style, ts.Script, ts.ThirdPartyCopy),
			Group(StageFinalize, ts.Markup, ts.Images, ts.Fonts),
		},
	}
}
