package cli

import (
	"go.uber.org/zap"

	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/agent"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/capability"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/config"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/llm/configbuilder"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/observability"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/robot"
)

// buildEngine assembles the full pipeline: provider router, capability
// registry over sim or hardware collaborators, executor, and coordinator.
func buildEngine(cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics, speaker capability.Speaker) (*agent.Coordinator, error) {
	router, err := configbuilder.BuildRouterFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	router.Logger = logger
	router.Metrics = metrics

	// The serial and GPIO drivers are external wrappers; the engine always
	// talks to the Arm/Actuators/Camera boundaries. Simulated backends keep
	// everything runnable without a robot attached.
	arm := robot.NewSimArm()
	controller := robot.NewController(arm, cfg.Robot, logger)
	actuators := robot.NewSimActuators()
	camera := &robot.SimCamera{Dir: cfg.Paths.TempDir}
	teachings := robot.NewTeachingStore(cfg.Paths.TeachingDir, logger)

	registry := capability.NewRegistry(capability.Deps{
		Controller: controller,
		Arm:        arm,
		Actuators:  actuators,
		Camera:     camera,
		Teachings:  teachings,
		Router:     router,
		Logger:     logger,
	})

	executor := capability.NewExecutor(registry, speaker, logger)
	executor.Metrics = metrics

	coordinator := agent.NewCoordinator(router, registry, executor, cfg.Agent, logger)
	coordinator.Metrics = metrics
	return coordinator, nil
}
